package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMeetsCompletionPredicate(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want bool
	}{
		{
			name: "empty response",
			resp: Response{},
			want: false,
		},
		{
			name: "not deployed",
			resp: Response{CurrentStatus: "patched", VendorContacted: FlagNo, DeployedInKE: FlagNo},
			want: true,
		},
		{
			name: "deployed without compensatory controls",
			resp: Response{CurrentStatus: "patched", VendorContacted: FlagYes, DeployedInKE: FlagYes},
			want: false,
		},
		{
			name: "deployed with compensatory controls",
			resp: Response{
				CurrentStatus:                "mitigated",
				VendorContacted:              FlagYes,
				DeployedInKE:                 FlagYes,
				CompensatoryControlsProvided: "network segmentation",
			},
			want: true,
		},
		{
			name: "deployment unanswered",
			resp: Response{CurrentStatus: "patched", VendorContacted: FlagYes},
			want: false,
		},
		{
			name: "missing status",
			resp: Response{VendorContacted: FlagNo, DeployedInKE: FlagNo},
			want: false,
		},
		{
			name: "missing vendor contact",
			resp: Response{CurrentStatus: "patched", DeployedInKE: FlagNo},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resp.MeetsCompletionPredicate())
		})
	}
}

func TestCompletionPayloadMissingFields(t *testing.T) {
	now := time.Now()

	t.Run("all missing", func(t *testing.T) {
		p := CompletionPayload{}
		missing := p.MissingFields()
		assert.Contains(t, missing, "current_status")
		assert.Contains(t, missing, "deployed_in_ke")
		assert.Contains(t, missing, "vendor_contacted")
		// Conditional fields only apply once the flags are answered.
		assert.NotContains(t, missing, "site")
		assert.NotContains(t, missing, "vendor_contact_date")
	})

	t.Run("deployed requires site and controls", func(t *testing.T) {
		p := CompletionPayload{
			CurrentStatus:   "patched",
			DeployedInKE:    FlagYes,
			VendorContacted: FlagNo,
		}
		missing := p.MissingFields()
		assert.ElementsMatch(t, []string{"site", "compensatory_controls_provided"}, missing)
	})

	t.Run("vendor contacted requires date", func(t *testing.T) {
		p := CompletionPayload{
			CurrentStatus:   "patched",
			DeployedInKE:    FlagNo,
			VendorContacted: FlagYes,
		}
		missing := p.MissingFields()
		assert.Equal(t, []string{"vendor_contact_date"}, missing)
	})

	t.Run("not deployed needs neither site nor controls", func(t *testing.T) {
		p := CompletionPayload{
			CurrentStatus:     "patched",
			DeployedInKE:      FlagNo,
			VendorContacted:   FlagYes,
			VendorContactDate: &now,
		}
		assert.Empty(t, p.MissingFields())
	})

	t.Run("complete deployed payload", func(t *testing.T) {
		p := CompletionPayload{
			CurrentStatus:                "mitigated",
			DeployedInKE:                 FlagYes,
			Site:                         "Nairobi North substation",
			VendorContacted:              FlagYes,
			VendorContactDate:            &now,
			CompensatoryControlsProvided: "firewall rules",
		}
		assert.Empty(t, p.MissingFields())
	})

	t.Run("invalid flag value counts as unanswered", func(t *testing.T) {
		p := CompletionPayload{
			CurrentStatus:   "patched",
			DeployedInKE:    "X",
			VendorContacted: FlagNo,
		}
		assert.Contains(t, p.MissingFields(), "deployed_in_ke")
	})
}

func TestUpdateResponseRequestIsEmpty(t *testing.T) {
	assert.True(t, (&UpdateResponseRequest{}).IsEmpty())

	comments := "checked with vendor"
	assert.False(t, (&UpdateResponseRequest{Comments: &comments}).IsEmpty())

	target := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, (&UpdateResponseRequest{TargetDate: &target}).IsEmpty())
}
