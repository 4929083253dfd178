package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512.0 MB", formatBytes(512*1024*1024))
	assert.Equal(t, "1.0 GB", formatBytes(1024*1024*1024))
	assert.Equal(t, "2.5 GB", formatBytes(2560*1024*1024))
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "5m", formatUptime(300))
	assert.Equal(t, "2h 5m", formatUptime(2*3600+300))
	assert.Equal(t, "3d 4h", formatUptime(3*86400+4*3600))
}
