package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProspect_Validate(t *testing.T) {
	tests := []struct {
		name     string
		prospect Prospect
		wantErr  bool
	}{
		{
			name: "full name and email",
			prospect: Prospect{
				FirstName: "Dana",
				LastName:  "Reyes",
				Email:     "dana@acmefab.com",
			},
			wantErr: false,
		},
		{
			name: "company without name",
			prospect: Prospect{
				Email:   "info@acmefab.com",
				Company: "Acme Fabrication",
			},
			wantErr: false,
		},
		{
			name: "missing email",
			prospect: Prospect{
				FirstName: "Dana",
				LastName:  "Reyes",
			},
			wantErr: true,
		},
		{
			name: "malformed email",
			prospect: Prospect{
				FirstName: "Dana",
				LastName:  "Reyes",
				Email:     "not-an-email",
			},
			wantErr: true,
		},
		{
			name: "first name only and no company",
			prospect: Prospect{
				FirstName: "Dana",
				Email:     "dana@acmefab.com",
			},
			wantErr: true,
		},
		{
			name: "malformed website URL",
			prospect: Prospect{
				FirstName:  "Dana",
				LastName:   "Reyes",
				Email:      "dana@acmefab.com",
				WebsiteURL: "acmefab.com", // missing scheme
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.prospect.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestProspect_FullName(t *testing.T) {
	p := Prospect{FirstName: "Dana", LastName: "Reyes"}
	assert.Equal(t, "Dana Reyes", p.FullName())

	p = Prospect{FirstName: "  Dana  "}
	assert.Equal(t, "Dana", p.FullName())

	p = Prospect{}
	assert.Equal(t, "", p.FullName())
}

func TestProspect_DisplayLabel(t *testing.T) {
	p := Prospect{FirstName: "Dana", LastName: "Reyes", Company: "Acme", Email: "d@a.com"}
	assert.Equal(t, "Dana Reyes", p.DisplayLabel())

	p = Prospect{Company: "Acme Fabrication", Email: "info@acmefab.com"}
	assert.Equal(t, "Acme Fabrication", p.DisplayLabel())

	p = Prospect{Email: "info@acmefab.com"}
	assert.Equal(t, "info@acmefab.com", p.DisplayLabel())
}
