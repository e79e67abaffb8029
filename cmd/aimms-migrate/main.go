package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mdkberry/migrating-to-aimms/internal/schema"
	"github.com/mdkberry/migrating-to-aimms/internal/util"
)

var (
	// Version is set at build time
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "aimms-migrate",
		Short: "Migrate legacy shot projects into the AIMMS 1.0 project format",
		Long: `aimms-migrate converts legacy name-keyed shot projects into the canonical
AIMMS 1.0 shape: numeric surrogate shot ids, a conformant SQLite shot
database, id-keyed media folders, and a verifiable shot-name mapping.
It also validates any project of unknown provenance.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./aimms-migrate.yaml)")
	rootCmd.PersistentFlags().String("schema", "", "schema descriptor file (default is the built-in AIMMS 1.0 descriptor)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")

	viper.BindPFlag("schema", rootCmd.PersistentFlags().Lookup("schema"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("aimms-migrate")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("AIMMS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && !viper.GetBool("quiet") {
		util.InfoLog("Using config file: %s", viper.ConfigFileUsed())
	}

	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))
}

// loadSchema resolves the schema descriptor: an explicit file wins, the
// embedded AIMMS 1.0 descriptor is the default.
func loadSchema() (*schema.Schema, error) {
	if path := viper.GetString("schema"); path != "" {
		return schema.Load(path)
	}
	return schema.Default(), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
