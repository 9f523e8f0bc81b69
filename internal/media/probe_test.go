package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration([]byte(`{"format":{"duration":"59.960000"}}`))
	require.NoError(t, err)
	assert.Equal(t, 59960*time.Millisecond, d)
}

func TestParseDurationFromStream(t *testing.T) {
	out := `{"streams":[{"codec_type":"audio","duration":"9.0"},{"codec_type":"video","duration":"15.000"}],"format":{}}`
	d, err := ParseDuration([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, d)
}

func TestParseDurationMissing(t *testing.T) {
	_, err := ParseDuration([]byte(`{"format":{"duration":"N/A"}}`))
	require.ErrorIs(t, err, ErrNoDuration)

	_, err = ParseDuration([]byte(`not json`))
	require.Error(t, err)
}
