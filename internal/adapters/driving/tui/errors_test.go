package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	errs := []error{ErrMissingSession, ErrMissingUploader, ErrMissingFamily}
	for i := range errs {
		assert.Contains(t, errs[i].Error(), "tui:")
		for j := i + 1; j < len(errs); j++ {
			assert.NotErrorIs(t, errs[i], errs[j])
		}
	}
}
