package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/machlit/cutler/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "plain_error",
			err:  errors.New(errors.ErrConfigParse, "config is not valid TOML"),
			want: "[CONFIG_PARSE] config is not valid TOML",
		},
		{
			name: "wrapped_error",
			err:  errors.Wrap(fmt.Errorf("eof"), errors.ErrSnapshotCorrupt, "snapshot unreadable"),
			want: "[SNAPSHOT_CORRUPT] snapshot unreadable: eof",
		},
		{
			name: "formatted_error",
			err:  errors.Newf(errors.ErrDomainUnknown, "domain %q was not found", "com.apple.nope"),
			want: `[DOMAIN_UNKNOWN] domain "com.apple.nope" was not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestIsCode(t *testing.T) {
	inner := errors.New(errors.ErrSnapshotCorrupt, "corrupt")
	outer := errors.Wrap(inner, errors.ErrInternal, "unapply failed")

	assert.True(t, errors.IsCode(outer, errors.ErrInternal))
	assert.True(t, errors.IsCode(outer, errors.ErrSnapshotCorrupt))
	assert.False(t, errors.IsCode(outer, errors.ErrConfigParse))
	assert.False(t, errors.IsCode(stderrors.New("plain"), errors.ErrInternal))
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("io failure")
	err := errors.Wrap(cause, errors.ErrPrefIO, "write failed")
	assert.ErrorIs(t, err, cause)
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "never happens"))
}
