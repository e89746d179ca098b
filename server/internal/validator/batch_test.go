package validator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestValidateBatchPreservesOrder(t *testing.T) {
	valid, err := json.Marshal(document(dialogueScene("d1")))
	require.NoError(t, err)
	missingMeta := document(dialogueScene("d2"))
	delete(missingMeta, "metadata")
	invalid, err := json.Marshal(missingMeta)
	require.NoError(t, err)

	docs := [][]byte{valid, invalid, []byte(`{oops`), valid}

	reports, err := New().ValidateBatch(context.Background(), docs, 2)
	require.NoError(t, err)
	require.Len(t, reports, 4)

	assert.True(t, reports[0].IsValid)
	assert.Equal(t, []string{"Missing required field: metadata"}, reports[1].Errors)
	assert.True(t, reports[2].IsFault())
	assert.True(t, reports[3].IsValid)
}

func TestValidateBatchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().ValidateBatch(ctx, [][]byte{[]byte(`null`)}, 0)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestValidateBatchEmpty(t *testing.T) {
	reports, err := New().ValidateBatch(context.Background(), nil, 4)
	require.NoError(t, err)
	assert.Empty(t, reports)
}
