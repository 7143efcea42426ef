package parameters

import "github.com/cbmcfs/cbmcore"

func cbmcoreConfigError(format string, args ...interface{}) error {
	return cbmcore.NewConfigurationError(format, args...)
}

func cbmcoreDomainError(format string, args ...interface{}) error {
	return cbmcore.NewDomainError(format, args...)
}
