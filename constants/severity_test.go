package constants

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifySeverity(t *testing.T) {
	require.Equal(t, SeverityNone, ClassifySeverity(0))
	require.Equal(t, SeverityLow, ClassifySeverity(0.1))
	require.Equal(t, SeverityLow, ClassifySeverity(14.9))
	require.Equal(t, SeverityModerate, ClassifySeverity(15))
	require.Equal(t, SeverityModerate, ClassifySeverity(29.9))
	require.Equal(t, SeverityHigh, ClassifySeverity(30))
	require.Equal(t, SeverityHigh, ClassifySeverity(49.9))
	require.Equal(t, SeveritySevere, ClassifySeverity(50))
	require.Equal(t, SeveritySevere, ClassifySeverity(100))
}
