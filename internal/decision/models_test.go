package decision_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remitguard/internal/decision"
	"remitguard/pkg/canonhash"
)

func TestPrecheckInputSnapshotHash(t *testing.T) {
	t.Run("explicit empty optional field differs from absent", func(t *testing.T) {
		absent := baseInput()
		absent.Sender.Name = nil
		empty := baseInput()
		empty.Sender.Name = strPtr("")

		h1, err := canonhash.SnapshotHash(absent)
		require.NoError(t, err)
		h2, err := canonhash.SnapshotHash(empty)
		require.NoError(t, err)

		assert.NotEqual(t, h1, h2)
	})

	t.Run("empty metadata purpose is part of the snapshot", func(t *testing.T) {
		withEmpty := baseInput()
		withEmpty.Metadata = &decision.Metadata{Purpose: strPtr("")}
		withNone := baseInput()
		withNone.Metadata = &decision.Metadata{}

		h1, err := canonhash.SnapshotHash(withEmpty)
		require.NoError(t, err)
		h2, err := canonhash.SnapshotHash(withNone)
		require.NoError(t, err)

		assert.NotEqual(t, h1, h2)
	})

	t.Run("wallet address of absent wallet is empty", func(t *testing.T) {
		assert.Equal(t, "", decision.Counterparty{ID: senderID}.WalletAddress())
	})
}
