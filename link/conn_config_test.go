package link

import (
	"testing"
	"time"

	"github.com/arloliu/go-instrlink/logger"
	"github.com/stretchr/testify/require"
)

func TestNewConnectionConfig(t *testing.T) {
	require := require.New(t)

	t.Run("Defaults", func(t *testing.T) {
		cfg, err := NewConnectionConfig("127.0.0.1", 9999)
		require.NoError(err)
		require.Equal("127.0.0.1:9999", cfg.Endpoint().Address())
		require.Equal(time.Second, cfg.Timeout())
		require.Equal(4096, cfg.MaxResponseBytes())
		require.Equal(30*time.Second, cfg.KeepAlive())
		require.Same(logger.GetLogger(), cfg.Logger())
	})

	t.Run("Valid Options", func(t *testing.T) {
		l := logger.NewMockLogger()
		cfg, err := NewConnectionConfig("10.0.0.7", 5025,
			WithTimeout(250*time.Millisecond),
			WithMaxResponseBytes(64),
			WithKeepAlive(-1),
			WithLogger(l),
		)
		require.NoError(err)
		require.Equal(250*time.Millisecond, cfg.Timeout())
		require.Equal(64, cfg.MaxResponseBytes())
		require.Equal(time.Duration(-1), cfg.KeepAlive())
		require.Same(l, cfg.Logger())
	})

	t.Run("Nil Logger Keeps Default", func(t *testing.T) {
		cfg, err := NewConnectionConfig("10.0.0.7", 5025, WithLogger(nil))
		require.NoError(err)
		require.NotNil(cfg.Logger())
	})

	t.Run("Invalid Endpoint", func(t *testing.T) {
		_, err := NewConnectionConfig("not a host", 5025)
		require.ErrorIs(err, ErrInvalidHost)

		_, err = NewConnectionConfig("10.0.0.7", 0)
		require.ErrorIs(err, ErrInvalidPort)
	})

	t.Run("Invalid Timeout", func(t *testing.T) {
		_, err := NewConnectionConfig("10.0.0.7", 5025, WithTimeout(0))
		require.ErrorIs(err, ErrInvalidTimeout)
		require.EqualError(err, "timeout should be greater than 0")

		_, err = NewConnectionConfig("10.0.0.7", 5025, WithTimeout(-time.Second))
		require.ErrorIs(err, ErrInvalidTimeout)
	})

	t.Run("Invalid Max Response Bytes", func(t *testing.T) {
		_, err := NewConnectionConfig("10.0.0.7", 5025, WithMaxResponseBytes(0))
		require.ErrorIs(err, ErrInvalidMaxResponseBytes)
	})

	t.Run("Nil Config", func(t *testing.T) {
		require.ErrorIs(WithTimeout(time.Second).apply(nil), ErrConnConfigNil)
		require.ErrorIs(WithMaxResponseBytes(1).apply(nil), ErrConnConfigNil)
		require.ErrorIs(WithKeepAlive(0).apply(nil), ErrConnConfigNil)
		require.ErrorIs(WithLogger(nil).apply(nil), ErrConnConfigNil)
	})
}
