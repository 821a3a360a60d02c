// Copyright (c) 2026 lumen3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command lumenpak builds, lists and extracts pak asset archives.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/lumen3d/lumen/asset"
)

func init() {
	u, err := user.Current()
	if err != nil {
		currentUserName = "unknown"
		return
	}
	currentUserName = u.Name
}

var (
	currentUserName string
	author          = flag.String("author", "", "Set the author of the archive when compressing (default: current user)")
	version         = flag.Int64("version", 1, "Archive version number to create it with")
	compress        = flag.String("c", "", "Compress the given file/folder")
	extract         = flag.String("e", "", "Extract the archive into the output directory")
	list            = flag.String("l", "", "List the contents of the given archive")
	dstFile         = flag.String("f", "out.pak", "Destination archive file")
	outDir          = flag.String("o", ".", "Output directory for extraction")
)

func main() {
	var opMade bool
	flag.Parse()

	if *extract != "" && *compress != "" {
		log.Fatal("only one operation at a time")
	}

	if *compress != "" {
		opMade = true
		if err := compressFiles(); err != nil {
			log.Fatal(err)
		}
	}

	if *extract != "" {
		opMade = true
		if err := extractFiles(); err != nil {
			log.Fatal(err)
		}
	}

	if *list != "" {
		opMade = true
		if err := listFiles(); err != nil {
			log.Fatal(err)
		}
	}

	if !opMade {
		flag.PrintDefaults()
	}
}

func compressFiles() error {
	if _, err := os.Stat(*dstFile); err == nil {
		return errors.New("destination file exists, will not overwrite")
	}

	root := filepath.Clean(*compress)
	var filesToCompress []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		filesToCompress = append(filesToCompress, path)
		return nil
	})
	if err != nil {
		return err
	}
	if len(filesToCompress) == 0 {
		return fmt.Errorf("nothing to compress under %q", root)
	}

	who := *author
	if who == "" {
		who = currentUserName
	}
	builder, err := asset.NewBuilder(asset.Header{
		Author:      who,
		DateCreated: time.Now().Unix(),
		Version:     *version,
	})
	if err != nil {
		return err
	}
	defer builder.Close()

	for _, ftc := range filesToCompress {
		name, err := archiveName(root, ftc)
		if err != nil {
			return err
		}
		if err := builder.AddFile(name, ftc); err != nil {
			return err
		}
		log.WithField("file", name).Debug("staged")
	}

	dst, err := os.Create(*dstFile)
	if err != nil {
		return err
	}
	defer dst.Close()

	written, err := builder.WriteTo(dst)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"archive": *dstFile,
		"files":   len(filesToCompress),
		"bytes":   written,
	}).Info("archive written")
	return nil
}

// archiveName maps a disk path to its slash-separated name inside the
// archive, relative to the compression root.
func archiveName(root, path string) (string, error) {
	if root == path {
		// single-file compression keeps the base name
		return filepath.Base(path), nil
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func extractFiles() error {
	ar, err := asset.OpenFile(*extract)
	if err != nil {
		return err
	}
	defer ar.Close()

	for _, name := range ar.Names() {
		target := filepath.Join(*outDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}

		rc, err := ar.Open(name)
		if err != nil {
			return err
		}
		out, err := os.Create(target)
		if err != nil {
			rc.Close()
			return err
		}
		_, err = io.Copy(out, rc)
		rc.Close()
		out.Close()
		if err != nil {
			return fmt.Errorf("extract %q: %v", name, err)
		}
		log.WithField("file", target).Debug("extracted")
	}
	log.WithFields(log.Fields{
		"archive": *extract,
		"files":   len(ar.Names()),
	}).Info("archive extracted")
	return nil
}

func listFiles() error {
	ar, err := asset.OpenFile(*list)
	if err != nil {
		return err
	}
	defer ar.Close()

	header := ar.Header()
	fmt.Printf("%s: version %d, by %s, created %s\n", *list, header.Version,
		header.Author, time.Unix(header.DateCreated, 0).Format(time.RFC3339))
	for _, name := range ar.Names() {
		entry, _ := ar.Stat(name)
		fmt.Printf("%10d %10d  %s\n", entry.Size, entry.CompressedSize, name)
	}
	return nil
}
