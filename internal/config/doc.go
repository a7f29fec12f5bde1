// Package config loads and validates boardroom configuration.
//
// Configuration is layered, lowest priority first:
//  1. Defaults in code
//  2. base.yaml
//  3. {environment}.yaml
//  4. local.yaml (development only)
//  5. Environment variables
//
// Files are read from CONFIG_DIR (default ./config). A .env file, if present,
// is loaded into the process environment first with LoadDotEnv.
//
//	if err := config.LoadDotEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	cfg, err := config.LoadWithLoader()
//
// In development a ConfigWatcher reloads the files on change and notifies
// registered callbacks; only the boardroom knobs and the log level take
// effect without a restart.
package config
