package repo

import (
	"github.com/odvcencio/tinygit/pkg/object"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// MetaDirName is the metadata directory at the root of a working tree.
const MetaDirName = ".git"

// Repo represents an opened repository.
type Repo struct {
	RootDir string        // working directory root
	GitDir  string        // .git/ directory, the object store root
	FS      afero.Fs      // filesystem holding both
	Config  *Config       // effective configuration
	Store   *object.Store // content-addressed object store
	Log     *zap.Logger
}

type options struct {
	log *zap.Logger
	env envconfig.Lookuper
}

// Option configures Init and Open.
type Option func(*options)

// WithLogger sets the logger handed to the store and tree builder.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithEnv sets where environment overrides are looked up. Defaults to the
// process environment.
func WithEnv(l envconfig.Lookuper) Option {
	return func(o *options) {
		o.env = l
	}
}

func buildOptions(opts []Option) *options {
	o := &options{
		log: zap.NewNop(),
		env: envconfig.OsLookuper(),
	}
	for _, fn := range opts {
		fn(o)
	}
	return o
}
