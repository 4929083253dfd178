package services

import (
	"context"
	"testing"

	"advisory-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUpdateResponseRejectsEmptyEdit(t *testing.T) {
	// Request validation runs before any storage access, so a zero-value
	// service is enough.
	svc := &ResponseService{}

	_, err := svc.UpdateResponse(context.Background(), 1, 2, 3, &models.UpdateResponseRequest{})

	var validation *models.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "update contains no fields", validation.Error())
	assert.Empty(t, validation.MissingFields)
}

func TestUpdateResponseRejectsInvalidFlags(t *testing.T) {
	svc := &ResponseService{}

	tests := []struct {
		name  string
		req   *models.UpdateResponseRequest
		field string
	}{
		{
			name:  "deployed_in_ke must be Y or N",
			req:   &models.UpdateResponseRequest{DeployedInKE: strPtr("maybe")},
			field: "deployed_in_ke",
		},
		{
			name:  "vendor_contacted must be Y or N",
			req:   &models.UpdateResponseRequest{VendorContacted: strPtr("yes")},
			field: "vendor_contacted",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UpdateResponse(context.Background(), 1, 2, 3, tc.req)

			var validation *models.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, []string{tc.field}, validation.MissingFields)
		})
	}
}
