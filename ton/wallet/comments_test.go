package wallet

import (
	"strings"
	"testing"

	"golang.org/x/crypto/ed25519"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCommentCell(t *testing.T) {
	c, err := CreateCommentCell("wallet test comment")
	require.NoError(t, err)

	s := c.BeginParse()
	assert.Equal(t, uint64(0), s.MustLoadUInt(32))
	str, err := s.LoadStringSnake()
	require.NoError(t, err)
	assert.Equal(t, "wallet test comment", str)
}

func TestCreateCommentCell_LongSnake(t *testing.T) {
	// long enough to need chained chunk cells
	text := strings.Repeat("deterministic address wallet ", 20)

	c, err := CreateCommentCell(text)
	require.NoError(t, err)
	require.Equal(t, 1, c.RefsNum())

	s := c.BeginParse()
	assert.Equal(t, uint64(0), s.MustLoadUInt(32))
	str, err := s.LoadStringSnake()
	require.NoError(t, err)
	assert.Equal(t, text, str)
}

func TestEncryptedCommentRoundTrip(t *testing.T) {
	alice := testKey(10)
	bob := testKey(20)
	alicePub := alice.Public().(ed25519.PublicKey)
	bobPub := bob.Public().(ed25519.PublicKey)

	sender, err := AddressFromPubKey(alicePub, V3R2, DefaultSubwallet)
	require.NoError(t, err)

	for _, text := range []string{
		"short",
		"exactly sixteen.",
		strings.Repeat("a longer comment that spans multiple cipher blocks ", 8),
	} {
		c, err := CreateEncryptedCommentCell(text, sender, alice, bobPub)
		require.NoError(t, err)

		got, err := DecryptCommentCell(c, sender, bob, alicePub)
		require.NoError(t, err)
		assert.Equal(t, text, string(got))
	}
}

func TestEncryptedComment_WrongKeys(t *testing.T) {
	alice := testKey(10)
	bob := testKey(20)
	eve := testKey(30)
	alicePub := alice.Public().(ed25519.PublicKey)
	bobPub := bob.Public().(ed25519.PublicKey)

	sender, err := AddressFromPubKey(alicePub, V3R2, DefaultSubwallet)
	require.NoError(t, err)

	c, err := CreateEncryptedCommentCell("for bob only", sender, alice, bobPub)
	require.NoError(t, err)

	_, err = DecryptCommentCell(c, sender, eve, alicePub)
	assert.Error(t, err)

	// wrong sender address breaks the message key check
	otherSender, err := AddressFromPubKey(bobPub, V3R2, DefaultSubwallet)
	require.NoError(t, err)
	_, err = DecryptCommentCell(c, otherSender, bob, alicePub)
	assert.Error(t, err)
}

func TestEncryptedComment_NotEncryptedOpcode(t *testing.T) {
	alice := testKey(10)
	bob := testKey(20)
	alicePub := alice.Public().(ed25519.PublicKey)

	sender, err := AddressFromPubKey(alicePub, V3R2, DefaultSubwallet)
	require.NoError(t, err)

	plain, err := CreateCommentCell("plain")
	require.NoError(t, err)

	_, err = DecryptCommentCell(plain, sender, bob, alicePub)
	assert.Error(t, err)
}

func TestSharedKeySymmetry(t *testing.T) {
	alice := testKey(10)
	bob := testKey(20)

	k1, err := sharedKey(alice, bob.Public().(ed25519.PublicKey))
	require.NoError(t, err)
	k2, err := sharedKey(bob, alice.Public().(ed25519.PublicKey))
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 32)
}
