package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	store := newSessionStore()

	assert.Nil(t, store.get(100))

	session := store.create(100, 50000)
	require.NotNil(t, session)
	assert.Equal(t, stepWaitingName, session.Step)
	assert.Equal(t, int64(50000), session.Amount)

	// The store hands out the live session, not a copy.
	session.Step = stepWaitingPhone
	session.Fullname = "Afi Mensah"
	assert.Equal(t, stepWaitingPhone, store.get(100).Step)

	store.destroy(100)
	assert.Nil(t, store.get(100))

	// Destroying an already absent session is harmless.
	store.destroy(100)
	assert.Nil(t, store.get(100))
}

func TestSessionsAreIndependentPerUser(t *testing.T) {
	store := newSessionStore()

	a := store.create(1, 10000)
	b := store.create(2, 20000)

	a.Step = stepConfirming
	assert.Equal(t, stepWaitingName, b.Step)
	assert.Equal(t, int64(20000), store.get(2).Amount)

	store.destroy(1)
	assert.Nil(t, store.get(1))
	assert.NotNil(t, store.get(2))
}

func TestSessionRecreateResetsFlow(t *testing.T) {
	store := newSessionStore()

	first := store.create(1, 10000)
	first.Step = stepConfirming
	first.Phone = "90123456"

	second := store.create(1, 15000)
	assert.Equal(t, stepWaitingName, second.Step)
	assert.Equal(t, int64(15000), second.Amount)
	assert.Empty(t, second.Phone)
}

func TestValidInput(t *testing.T) {
	assert.False(t, validInput(""))
	assert.False(t, validInput("123"))
	assert.False(t, validInput("1234567"))
	assert.False(t, validInput("   1234567   "))
	assert.True(t, validInput("12345678"))
	assert.True(t, validInput("Afi Mensah"))
}

func TestPaymentMethodsComplete(t *testing.T) {
	require.Len(t, methodOrder, 7)
	for _, code := range methodOrder {
		assert.NotEmpty(t, paymentMethods[code], "missing label for %s", code)
	}
	assert.Equal(t, "Wave", paymentMethods["wave"])
	assert.Equal(t, "Mobile Money (MoMo)", paymentMethods["momo"])
}
