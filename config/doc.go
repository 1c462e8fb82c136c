// Package config loads task files and process configuration.
//
// It uses Viper to read a YAML file and godotenv to load a .env file into
// the environment. Variables carrying the process prefix override file
// values with underscore-separated paths (DATAFLOW_TASK_KEY_TYPE sets
// task.key_type).
//
// # Usage
//
//	var f TaskFile
//	err := config.LoadConfig("dataflow", &f, config.WithConfigFile("task.yml"))
package config
