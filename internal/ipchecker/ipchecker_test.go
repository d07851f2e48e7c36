package ipchecker

import (
	"net"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("valid CIDR", func(t *testing.T) {
		checker, err := New("10.0.0.0/8")
		require.NoError(t, err)
		assert.NotNil(t, checker)
	})

	t.Run("empty subnet yields a disabled checker", func(t *testing.T) {
		checker, err := New("")
		require.NoError(t, err)
		assert.False(t, checker.Check(net.ParseIP("10.1.2.3")))
	})

	t.Run("malformed CIDR", func(t *testing.T) {
		_, err := New("not-a-cidr")
		assert.Error(t, err)
	})
}

func TestCheck(t *testing.T) {
	checker, err := New("192.168.1.0/24")
	require.NoError(t, err)

	assert.True(t, checker.Check(net.ParseIP("192.168.1.42")))
	assert.False(t, checker.Check(net.ParseIP("192.168.2.42")))
	assert.False(t, checker.Check(nil))
}

func TestGetClientIP(t *testing.T) {
	checker, err := New("10.0.0.0/8")
	require.NoError(t, err)

	t.Run("X-Real-IP wins", func(t *testing.T) {
		request := httptest.NewRequest("GET", "/", nil)
		request.Header.Set("X-Real-IP", "10.1.2.3")
		request.Header.Set("X-Forwarded-For", "172.16.0.1")

		ip, err := checker.GetClientIP(request)
		require.NoError(t, err)
		assert.Equal(t, "10.1.2.3", ip.String())
	})

	t.Run("first X-Forwarded-For entry", func(t *testing.T) {
		request := httptest.NewRequest("GET", "/", nil)
		request.Header.Set("X-Forwarded-For", "10.9.8.7, 172.16.0.1")

		ip, err := checker.GetClientIP(request)
		require.NoError(t, err)
		assert.Equal(t, "10.9.8.7", ip.String())
	})

	t.Run("falls back to RemoteAddr", func(t *testing.T) {
		request := httptest.NewRequest("GET", "/", nil)
		request.RemoteAddr = "10.5.5.5:54321"

		ip, err := checker.GetClientIP(request)
		require.NoError(t, err)
		assert.Equal(t, "10.5.5.5", ip.String())
	})
}
