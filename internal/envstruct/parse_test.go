package envstruct_test

import (
	"github.com/WingsGames/Neve-Or/internal/envstruct"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
	"time"
)

func noEnv(_ string) (string, bool) { return "", false }

func TestPopulate(t *testing.T) {
	type args struct {
		v         any
		lookupEnv func(string) (string, bool)
	}
	tests := []struct {
		name    string
		args    args
		want    any
		wantErr error
	}{
		{
			name:    "nil",
			args:    args{v: nil, lookupEnv: noEnv},
			want:    nil,
			wantErr: envstruct.ErrInvalidValue,
		},
		{
			name:    "not pointer",
			args:    args{v: struct{}{}, lookupEnv: noEnv},
			want:    nil,
			wantErr: envstruct.ErrInvalidValue,
		},
		{
			name:    "empty struct",
			args:    args{v: &struct{}{}, lookupEnv: noEnv},
			want:    &struct{}{},
			wantErr: nil,
		},
		{
			name: "empty env",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Addr string `env:"NEVEOR_ADDR"`
				}{},
				lookupEnv: noEnv,
			},
			want:    nil,
			wantErr: envstruct.ErrEnvNotSet,
		},
		{
			name: "picks correct env variable",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Addr       string `env:"NEVEOR_ADDR"`
					SqliteURL  string `env:"NEVEOR_SQLITE_URL"`
					OtherValue string
				}{},
				lookupEnv: func(s string) (string, bool) { return strings.ToLower(s), true },
			},
			want: &struct {
				Addr       string
				SqliteURL  string
				OtherValue string
			}{Addr: "neveor_addr", SqliteURL: "neveor_sqlite_url", OtherValue: ""},
			wantErr: nil,
		},
		{
			name: "handles default values of every supported type",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Language    string        `env:"NEVEOR_LANGUAGE" envDefault:"he"`
					DevTools    bool          `env:"NEVEOR_DEV_TOOLS" envDefault:"true"`
					SaveVersion int           `env:"NEVEOR_SAVE_VERSION" envDefault:"9"`
					Quota       int64         `env:"NEVEOR_STORAGE_QUOTA_BYTES" envDefault:"5242880"`
					RevealDelay time.Duration `env:"NEVEOR_INTRO_REVEAL_DELAY" envDefault:"4s"`
				}{},
				lookupEnv: noEnv,
			},
			want: &struct {
				Language    string
				DevTools    bool
				SaveVersion int
				Quota       int64
				RevealDelay time.Duration
			}{Language: "he", DevTools: true, SaveVersion: 9, Quota: 5242880, RevealDelay: 4 * time.Second},
			wantErr: nil,
		},
		{
			name: "environment overrides default",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					RevealDelay time.Duration `env:"NEVEOR_INTRO_REVEAL_DELAY" envDefault:"4s"`
				}{},
				lookupEnv: func(_ string) (string, bool) { return "250ms", true },
			},
			want: &struct {
				RevealDelay time.Duration
			}{RevealDelay: 250 * time.Millisecond},
			wantErr: nil,
		},
		{
			name: "rejects malformed int",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					SaveVersion int `env:"NEVEOR_SAVE_VERSION"`
				}{},
				lookupEnv: func(_ string) (string, bool) { return "nine", true },
			},
			want:    nil,
			wantErr: envstruct.ErrInvalidValue,
		},
		{
			name: "rejects unsupported types",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Ratio float64 `env:"NEVEOR_RATIO"`
				}{},
				lookupEnv: func(_ string) (string, bool) { return "0.5", true },
			},
			want:    nil,
			wantErr: envstruct.ErrInvalidValue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.args.v
			err := envstruct.Populate(v, tt.args.lookupEnv)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				require.EqualValues(t, tt.want, v)
			}
		})
	}
}
