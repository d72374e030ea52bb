// Package config loads engine settings from a TOML file with an
// INKWELL_* environment overlay on top.
//
// Settings default sensibly without a file; a missing file is not an
// error. A Watcher can reload the file on change for long-lived hosts
// that retune the engine between documents; a file that fails to
// parse keeps the previous configuration in effect.
//
//	cfg, err := config.Load("inkwell.toml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	ed := editor.New(
//		editor.WithRules(rules.NewEngine(cfg.RulesOptions()...)),
//		editor.WithHistory(history.New(cfg.HistoryOptions()...)),
//	)
package config
