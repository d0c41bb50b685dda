package models

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestMergeMetadata_PreservesExistingKeys(t *testing.T) {
	existing := datatypes.JSONMap{
		"provider":    "konnect",
		"redirectUrl": "https://pay.example/abc",
	}

	merged := MergeMetadata(existing, map[string]any{
		"status": "completed",
		"amount": int64(4500),
	})

	require.Equal(t, "konnect", merged["provider"])
	require.Equal(t, "https://pay.example/abc", merged["redirectUrl"])
	require.Equal(t, "completed", merged["status"])
	require.Equal(t, int64(4500), merged["amount"])

	// the input map is untouched
	require.Len(t, existing, 2)
}

func TestMergeMetadata_PatchOverwritesAndSkipsNil(t *testing.T) {
	existing := datatypes.JSONMap{"payment_status": "unpaid", "url": "https://old"}

	merged := MergeMetadata(existing, map[string]any{
		"payment_status": "paid",
		"url":            nil,
	})

	require.Equal(t, "paid", merged["payment_status"])
	require.Equal(t, "https://old", merged["url"])
}

func TestMergeMetadata_NilExisting(t *testing.T) {
	merged := MergeMetadata(nil, map[string]any{"provider": "mock"})
	require.Equal(t, "mock", merged["provider"])
}

func TestPaymentTransactionHelpers(t *testing.T) {
	var nilTx *PaymentTransaction
	require.False(t, nilTx.IsPaid())
	require.Empty(t, nilTx.MetadataString("provider"))

	tx := &PaymentTransaction{
		Status:   PaymentStatusPaid,
		Metadata: datatypes.JSONMap{"provider": "stripe", "amount": 100},
	}
	require.True(t, tx.IsPaid())
	require.Equal(t, "stripe", tx.MetadataString("provider"))
	require.Empty(t, tx.MetadataString("amount"))
}
