// Command cp imports a regular file from the host into an ext2 image, in
// the manner of ext2_cp.c.
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
		Use:   "cp IMAGE HOST_PATH IMAGE_PATH",
		Short: "copy a regular host file into an ext2 image",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(args[1])
			if err != nil {
				return err
			}
			if !info.Mode().IsRegular() {
				return fmt.Errorf("%s is not a regular file", args[1])
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			img, err := ext2image.Open(args[0])
			if err != nil {
				return err
			}
			defer img.Close()

			fs, err := ext2fs.Open(img.Bytes())
			if err != nil {
				return err
			}
			return fs.CopyIn(data, args[2])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if err := cmd.Execute(); err != nil {
		ext2log.Error("cp: %v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(ext2fs.Errno(err)))
	}
}
