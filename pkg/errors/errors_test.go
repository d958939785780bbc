package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScrapeErrorMessage(t *testing.T) {
	err := NewNavigation("Devpost", "failed to open listing page", stderrors.New("net::ERR_NAME_NOT_RESOLVED")).
		WithURL("https://devpost.com/hackathons")

	assert.Equal(t,
		"[navigation] Devpost: failed to open listing page (https://devpost.com/hackathons) - net::ERR_NAME_NOT_RESOLVED",
		err.Error())

	bare := NewDriverConfiguration("no browser binary", nil)
	assert.Equal(t, "[driver_configuration] no browser binary", bare.Error())
}

func TestIsFatal(t *testing.T) {
	assert.True(t, NewDriverConfiguration("missing", nil).IsFatal())
	assert.False(t, NewSessionAcquisition("Unstop", "launch failed", nil).IsFatal())
	assert.False(t, NewSourceTimeout("Unstop", 30*time.Second, nil).IsFatal())
	assert.False(t, NewNodeExtraction("Devfolio", "bad card", nil).IsFatal())
}

func TestTypeOfThroughWrapping(t *testing.T) {
	inner := NewSourceTimeout("Devfolio", 30*time.Second, context.DeadlineExceeded)
	wrapped := fmt.Errorf("scrape devfolio: %w", inner)

	assert.Equal(t, ErrorTypeSourceTimeout, TypeOf(wrapped))
	assert.True(t, Is(wrapped, ErrorTypeSourceTimeout))
	assert.False(t, Is(wrapped, ErrorTypeParsing))
	assert.True(t, stderrors.Is(wrapped, context.DeadlineExceeded))

	assert.Equal(t, ErrorType(""), TypeOf(stderrors.New("plain")))
	assert.False(t, Is(nil, ErrorTypeSourceTimeout))
}
