package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"floatc/internal/objcache"
	"floatc/internal/prog"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove every cached object",
	Long:  "Remove every entry of the object cache. The directory comes from --cache, the manifest [build].cache, or the user cache dir.",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().String("cache", "", "object cache directory (default: manifest or user cache dir)")
}

func runClean(cmd *cobra.Command, _ []string) error {
	dir, err := cleanCacheDir(cmd)
	if err != nil {
		return err
	}
	cache, err := objcache.Open(dir)
	if err != nil {
		return err
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to clear %q: %w", cache.Dir(), err)
	}
	if !quiet(cmd) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", cache.Dir())
	}
	return nil
}

// cleanCacheDir returns "" for the user cache dir.
func cleanCacheDir(cmd *cobra.Command) (string, error) {
	fallback := ""
	if !cmd.Flags().Changed("cache") {
		cwd, err := os.Getwd()
		if err != nil {
			cwd = "."
		}
		manifest, found, err := prog.LoadManifest(cwd)
		if err != nil {
			return "", err
		}
		if found {
			fallback = manifest.Config.Build.Cache
		}
	}
	dir, err := stringFlagOr(cmd, "cache", fallback)
	if err != nil {
		return "", err
	}
	if dir == "auto" {
		dir = ""
	}
	return dir, nil
}
