// Command mkdir creates a directory on an ext2 image, in the manner of
// ext2_mkdir.c: the leaf path component must not already exist.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AndrewH1995/EXT2-Ops/internal/ext2cfg"
	"github.com/AndrewH1995/EXT2-Ops/internal/ext2fs"
	"github.com/AndrewH1995/EXT2-Ops/internal/ext2image"
	"github.com/AndrewH1995/EXT2-Ops/internal/ext2log"
)

func main() {
	cfg := ext2cfg.Load()
	ext2log.SetLevel(cfg.LogLevel)

	cmd := &cobra.Command{
		Use:   "mkdir IMAGE PATH",
		Short: "create a directory on an ext2 image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := ext2image.Open(args[0])
			if err != nil {
				return err
			}
			defer img.Close()

			fs, err := ext2fs.Open(img.Bytes())
			if err != nil {
				return err
			}
			return fs.Mkdir(args[1])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if err := cmd.Execute(); err != nil {
		ext2log.Error("mkdir: %v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(ext2fs.Errno(err)))
	}
}
