// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bench

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/luxfi/mme/driver"
	"github.com/luxfi/mme/regmap"
)

const (
	BitsKey          = "bits"
	ExpBitsKey       = "exp-bits"
	RoundsKey        = "rounds"
	BackendKey       = "backend"
	UIOKey           = "uio"
	TimeoutKey       = "timeout"
	StrictTimeoutKey = "strict-timeout"
	ConfigKey        = "config"
	ReportKey        = "report"
	SeedKey          = "seed"
	InstalledKey     = "installed"
	ProfileDirKey    = "profile-dir"
)

var (
	errBits    = errors.New("modulus width must be 512, 1024 or 1536")
	errExpBits = errors.New("exponent length must be a positive multiple of 32")
	errRounds  = errors.New("rounds must be positive")
)

func AddFlags(flags *pflag.FlagSet) {
	flags.Int(BitsKey, regmap.BitsLow, "Modulus width in bits (512, 1024 or 1536)")
	flags.Int(ExpBitsKey, regmap.BitsLow, "Exponent length in bits (multiple of 32)")
	flags.Int(RoundsKey, 10, "Number of random test vectors to run")
	flags.String(BackendKey, "", "Platform backend to use (uio, sim); empty picks the best available")
	flags.String(UIOKey, "", "UIO device of the core (default "+driver.DefaultUIODevice+")")
	flags.Duration(TimeoutKey, driver.DefaultTimeout, "Completion wait timeout")
	flags.Bool(StrictTimeoutKey, false, "Fail instead of continuing when a completion wait times out")
	flags.String(ConfigKey, "", "JSON file with the driver configuration")
	flags.String(ReportKey, "", "Write a JSON report to this file")
	flags.Int64(SeedKey, 1, "Seed of the test vector generator")
	flags.Bool(InstalledKey, false, "Install each modulus and run SimultaneousExponentiate instead of ModExp")
	flags.String(ProfileDirKey, "", "Write CPU and heap profiles of the run to this directory")
}

type Config struct {
	Bits       int
	ExpBits    int
	Rounds     int
	Backend    string
	Seed       int64
	Installed  bool
	ReportPath string
	ProfileDir string
	Driver     driver.Config
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	bits, err := flags.GetInt(BitsKey)
	if err != nil {
		return nil, err
	}
	if _, ok := regmap.PartFor(bits); !ok {
		return nil, fmt.Errorf("%w: %d", errBits, bits)
	}

	expBits, err := flags.GetInt(ExpBitsKey)
	if err != nil {
		return nil, err
	}
	if expBits <= 0 || expBits%regmap.WordBits != 0 {
		return nil, fmt.Errorf("%w: %d", errExpBits, expBits)
	}

	rounds, err := flags.GetInt(RoundsKey)
	if err != nil {
		return nil, err
	}
	if rounds <= 0 {
		return nil, fmt.Errorf("%w: %d", errRounds, rounds)
	}

	backend, err := flags.GetString(BackendKey)
	if err != nil {
		return nil, err
	}

	seed, err := flags.GetInt64(SeedKey)
	if err != nil {
		return nil, err
	}

	installed, err := flags.GetBool(InstalledKey)
	if err != nil {
		return nil, err
	}

	reportPath, err := flags.GetString(ReportKey)
	if err != nil {
		return nil, err
	}

	profileDir, err := flags.GetString(ProfileDirKey)
	if err != nil {
		return nil, err
	}

	driverConfig, err := parseDriverConfig(flags)
	if err != nil {
		return nil, err
	}

	return &Config{
		Bits:       bits,
		ExpBits:    expBits,
		Rounds:     rounds,
		Backend:    backend,
		Seed:       seed,
		Installed:  installed,
		ReportPath: reportPath,
		ProfileDir: profileDir,
		Driver:     driverConfig,
	}, nil
}

// parseDriverConfig starts from the defaults, applies the optional config
// file and then the flags that were set explicitly.
func parseDriverConfig(flags *pflag.FlagSet) (driver.Config, error) {
	config := driver.DefaultConfig()

	path, err := flags.GetString(ConfigKey)
	if err != nil {
		return config, err
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return config, fmt.Errorf("couldn't read config %s: %w", path, err)
		}
		if err := json.Unmarshal(b, &config); err != nil {
			return config, fmt.Errorf("couldn't parse config %s: %w", path, err)
		}
	}

	if flags.Changed(UIOKey) {
		config.UIODevice, err = flags.GetString(UIOKey)
		if err != nil {
			return config, err
		}
	}
	if flags.Changed(TimeoutKey) {
		config.Timeout, err = flags.GetDuration(TimeoutKey)
		if err != nil {
			return config, err
		}
	}
	if flags.Changed(StrictTimeoutKey) {
		config.StrictTimeout, err = flags.GetBool(StrictTimeoutKey)
		if err != nil {
			return config, err
		}
	}
	return config, config.Validate()
}
