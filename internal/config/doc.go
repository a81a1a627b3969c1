// Package config loads larktask settings with viper.
//
// Every key can be set in a YAML config file, through a FEISHU_ prefixed
// environment variable (FEISHU_APP_ID, FEISHU_APP_SECRET, FEISHU_USER_ID,
// FEISHU_DELAY, ...) or, for the keys that have one, a command line flag.
package config
