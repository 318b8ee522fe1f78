// Command ln creates a hard or symbolic link on an ext2 image, in the
// manner of ext2_ln.c.
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

	var symbolic bool
	cmd := &cobra.Command{
		Use:   "ln IMAGE [-s] SRC DST",
		Short: "create a hard or symbolic link on an ext2 image",
		Args:  cobra.ExactArgs(3),
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
			return fs.Link(args[1], args[2], symbolic)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().BoolVarP(&symbolic, "symbolic", "s", false, "create a symbolic link instead of a hard link")

	if err := cmd.Execute(); err != nil {
		ext2log.Error("ln: %v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(ext2fs.Errno(err)))
	}
}
