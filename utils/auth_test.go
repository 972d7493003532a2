package utils

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cost, 10)

	ok, err := CheckPasswordHash("s3cret!", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPasswordHash("s3cret?", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckPasswordHash_MalformedHash(t *testing.T) {
	ok, err := CheckPasswordHash("pw", "not-a-bcrypt-hash")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestJWTManager(t *testing.T) {
	m, err := NewJWTManager("test-secret", SessionTTL)
	require.NoError(t, err)

	now := time.Now()
	token, exp, err := m.GenerateJWTToken("abc123", now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(7*24*time.Hour), exp, time.Second)

	claims, err := m.ParseJWTToken(token)
	require.NoError(t, err)
	assert.Equal(t, "abc123", claims.UserID)
	assert.Equal(t, "abc123", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTManager_Expired(t *testing.T) {
	m, err := NewJWTManager("test-secret", SessionTTL)
	require.NoError(t, err)

	token, _, err := m.GenerateJWTToken("abc123", time.Now().Add(-8*24*time.Hour))
	require.NoError(t, err)

	_, err = m.ParseJWTToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTManager_RejectsForeignTokens(t *testing.T) {
	m, _ := NewJWTManager("test-secret", SessionTTL)
	other, _ := NewJWTManager("other-secret", SessionTTL)

	token, _, err := other.GenerateJWTToken("abc123", time.Now())
	require.NoError(t, err)
	_, err = m.ParseJWTToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "abc123"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.ParseJWTToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ParseJWTToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTManager_RequiresSecret(t *testing.T) {
	_, err := NewJWTManager("", SessionTTL)
	assert.Error(t, err)
}

func TestRandomHex(t *testing.T) {
	s, err := RandomHex(3)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{6}$`), s)
}

func TestGenerateResetCode_Range(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateResetCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestResetCodeHash(t *testing.T) {
	stored, err := NewResetCodeHash("123456")
	require.NoError(t, err)

	salt, sum, ok := strings.Cut(stored, "$")
	require.True(t, ok)
	assert.Equal(t, sum, HashResetCode("123456", salt))

	assert.True(t, VerifyResetCode("123456", stored))
	assert.False(t, VerifyResetCode("123457", stored))
	assert.False(t, VerifyResetCode("123456", "nosalt"))
	assert.False(t, VerifyResetCode("123456", "salt$zz"))
}
