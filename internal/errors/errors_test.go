package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsInnerCode(t *testing.T) {
	inner := ConfigInvalid("histogram_bins must be in (0, 30]")
	err := Wrap(inner, "configuration validation failed")

	assert.Equal(t, CodeConfigInvalid, GetCode(err))
	assert.Equal(t, "configuration validation failed: histogram_bins must be in (0, 30]", err.Error())
	assert.True(t, stderrors.Is(err, inner))
}

func TestWrap_PlainErrorBecomesInternal(t *testing.T) {
	err := Wrapf(fmt.Errorf("disk full"), "write %s", "report.json")
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestGetCode_FindsWrappedAppError(t *testing.T) {
	err := fmt.Errorf("loading: %w", DataSourceError("sales.csv", stderrors.New("no such file")))
	assert.True(t, IsAppError(err))
	assert.Equal(t, CodeDataSource, GetCode(err))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeRender, stderrors.New("font missing"))
	assert.Equal(t, CodeRender, GetCode(err))
	assert.Equal(t, "font missing", err.Error())
}

func TestNewf(t *testing.T) {
	err := Newf(CodeConfigInvalid, "top_n must be at least 1, got %d", -2)
	assert.Equal(t, CodeConfigInvalid, GetCode(err))
	assert.Equal(t, "top_n must be at least 1, got -2", err.Error())
}
