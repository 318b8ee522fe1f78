// Command check scans an ext2 image for the five known classes of metadata
// inconsistency and repairs them in place, in the manner of
// ext2_checker.c. It never fails on a dirty image; it reports and fixes.
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
		Use:   "check IMAGE",
		Short: "check and repair an ext2 image's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := ext2image.Open(args[0])
			if err != nil {
				return err
			}
			defer img.Close()

			res, err := ext2fs.Check(img.Bytes())
			if err != nil {
				return err
			}
			for _, msg := range res.Messages {
				fmt.Printf("Fixed: %s\n", msg)
			}
			if res.FixedCount > 0 {
				fmt.Printf("%d file system inconsistencies repaired!\n", res.FixedCount)
			} else {
				fmt.Println("No file system inconsistencies detected!")
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if err := cmd.Execute(); err != nil {
		ext2log.Error("check: %v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(ext2fs.Errno(err)))
	}
}
