package extractor

import (
	"archive/tar"
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/teamcutter/midna/internal/domain"
	"github.com/ulikunitz/xz"
)

const pkgInfoName = ".PKGINFO"

// ReadPKGINFO reads the metadata file makepkg stores at the root of every
// package archive.
func ReadPKGINFO(path string) (*domain.PackageInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader, cleanup, err := getDecompressor(file)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	tr := tar.NewReader(reader)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		if strings.TrimPrefix(header.Name, "./") == pkgInfoName && header.Typeflag == tar.TypeReg {
			return parsePKGINFO(tr)
		}
	}

	return nil, fmt.Errorf("%s not found in %s", pkgInfoName, path)
}

func parsePKGINFO(r io.Reader) (*domain.PackageInfo, error) {
	info := &domain.PackageInfo{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "pkgname":
			info.Name = value
		case "pkgbase":
			info.Base = value
		case "pkgver":
			info.Version = value
		case "pkgdesc":
			info.Description = value
		case "arch":
			info.Arch = value
		case "url":
			info.URL = value
		case "size":
			info.Size, _ = strconv.ParseInt(value, 10, 64)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if info.Name == "" {
		return nil, fmt.Errorf("%s has no pkgname", pkgInfoName)
	}
	return info, nil
}

// https://gist.github.com/leommoore/f9e57ba2aa4bf197ebc5 - this is AWESOME
func getDecompressor(file *os.File) (io.Reader, func(), error) {
	header := make([]byte, 6)
	n, _ := file.Read(header)
	header = header[:n]
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, nil, err
	}

	switch {
	case n >= 4 && header[0] == 0x28 && header[1] == 0xb5 && header[2] == 0x2f && header[3] == 0xfd:
		// zstd: 0x28B52FFD
		zr, err := zstd.NewReader(file)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd: %w", err)
		}
		return zr, func() { zr.Close() }, nil

	case n >= 2 && header[0] == 0x1f && header[1] == 0x8b:
		// gzip: 0x1F8B
		gzr, err := gzip.NewReader(file)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip: %w", err)
		}
		return gzr, func() { gzr.Close() }, nil

	case n >= 6 && header[0] == 0xfd && header[1] == 0x37 && header[2] == 0x7a && header[3] == 0x58 && header[4] == 0x5a && header[5] == 0x00:
		// xz: 0xFD377A585A00
		xzr, err := xz.NewReader(file)
		if err != nil {
			return nil, nil, fmt.Errorf("xz: %w", err)
		}
		return xzr, nil, nil

	case n >= 2 && header[0] == 0x42 && header[1] == 0x5a:
		// bzip2: 0x425A
		return bzip2.NewReader(file), nil, nil

	default:
		// plain tar
		return file, nil, nil
	}
}
