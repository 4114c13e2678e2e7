package model

import (
	"testing"
)

func TestCanonicalParams_OmitsZeroFilters(t *testing.T) {
	c := SearchCriteria{Location: "Austin, TX"}

	params := c.CanonicalParams()

	if len(params) != 1 {
		t.Errorf("expected only location param, got %v", params)
	}
	if params["location"] != "austin, tx" {
		t.Errorf("expected lowercased location, got %q", params["location"])
	}
}

func TestCanonicalParams_Deterministic(t *testing.T) {
	a := SearchCriteria{
		Location:      "Austin, TX",
		MinPrice:      200000,
		MaxPrice:      450000,
		PropertyTypes: []string{"Condo", "House"},
	}
	b := SearchCriteria{
		Location:      "austin, tx",
		MinPrice:      200000,
		MaxPrice:      450000,
		PropertyTypes: []string{"house", "condo"},
	}

	pa := a.CanonicalParams()
	pb := b.CanonicalParams()

	if len(pa) != len(pb) {
		t.Fatalf("param count differs: %v vs %v", pa, pb)
	}
	for k, v := range pa {
		if pb[k] != v {
			t.Errorf("param %q differs: %q vs %q", k, v, pb[k])
		}
	}
}

func TestCanonicalParams_DoesNotMutateInput(t *testing.T) {
	c := SearchCriteria{
		Location:      "Austin, TX",
		PropertyTypes: []string{"house", "condo"},
	}

	c.CanonicalParams()

	if c.PropertyTypes[0] != "house" || c.PropertyTypes[1] != "condo" {
		t.Errorf("CanonicalParams mutated PropertyTypes: %v", c.PropertyTypes)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		criteria SearchCriteria
		wantErr  bool
	}{
		{
			name:     "valid minimal criteria",
			criteria: SearchCriteria{Location: "Austin, TX"},
		},
		{
			name:     "missing location",
			criteria: SearchCriteria{MinPrice: 100000},
			wantErr:  true,
		},
		{
			name:     "blank location",
			criteria: SearchCriteria{Location: "   "},
			wantErr:  true,
		},
		{
			name:     "inverted price range",
			criteria: SearchCriteria{Location: "Austin, TX", MinPrice: 500000, MaxPrice: 100000},
			wantErr:  true,
		},
		{
			name:     "inverted bedroom range",
			criteria: SearchCriteria{Location: "Austin, TX", MinBedrooms: 4, MaxBedrooms: 2},
			wantErr:  true,
		},
		{
			name:     "open-ended price range",
			criteria: SearchCriteria{Location: "Austin, TX", MinPrice: 200000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.criteria.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
