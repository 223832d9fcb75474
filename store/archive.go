package store

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
)

// ArchiveSource is one archive to extract while populating a store add
// (spec §4.C AddArchives): its location on local disk (already downloaded
// by the caller — network fetch is out of scope here), declared MIME type,
// a byte offset to skip before the archive data starts (for self-extracting
// installers), and the sub-path within the archive to treat as the root.
type ArchiveSource struct {
	Path        string
	MIMEType    string
	StartOffset int64
	Extract     string
}

// extractArchives extracts each source into dest in order, per spec
// §4.C step 2 ("stage a temp dir by extracting archives in order at their
// declared offsets/subpaths"). Later archives may add to or overwrite
// files an earlier archive placed.
func extractArchives(sources []ArchiveSource, dest string) error {
	for _, src := range sources {
		if err := extractOne(src, dest); err != nil {
			return errors.Wrapf(err, "extracting %q", src.Path)
		}
	}
	return nil
}

func extractOne(src ArchiveSource, dest string) error {
	f, err := os.Open(src.Path)
	if err != nil {
		return errors.Wrap(err, "open archive")
	}
	defer f.Close()

	if src.StartOffset > 0 {
		if _, err := f.Seek(src.StartOffset, io.SeekStart); err != nil {
			return errors.Wrap(err, "seek past archive offset")
		}
	}

	switch archiveKind(src.MIMEType, src.Path) {
	case kindZip:
		return extractZip(src.Path, src.StartOffset, src.Extract, dest)
	case kindTarGz:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return errors.Wrap(err, "open gzip stream")
		}
		defer gz.Close()
		return extractTar(gz, src.Extract, dest)
	case kindTarBz2:
		return extractTar(bzip2.NewReader(f), src.Extract, dest)
	case kindTarXz:
		xzr, err := xz.NewReader(f)
		if err != nil {
			return errors.Wrap(err, "open xz stream")
		}
		return extractTar(xzr, src.Extract, dest)
	case kindTar:
		return extractTar(f, src.Extract, dest)
	default:
		return errors.Errorf("unrecognized archive type (mime=%q, path=%q)", src.MIMEType, src.Path)
	}
}

type archiveFormat int

const (
	kindUnknown archiveFormat = iota
	kindZip
	kindTar
	kindTarGz
	kindTarBz2
	kindTarXz
)

func archiveKind(mimeType, path string) archiveFormat {
	switch mimeType {
	case "application/zip":
		return kindZip
	case "application/x-tar":
		return kindTar
	case "application/x-compressed-tar", "application/gzip":
		return kindTarGz
	case "application/x-bzip-compressed-tar":
		return kindTarBz2
	case "application/x-xz-compressed-tar":
		return kindTarXz
	}

	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return kindZip
	case strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz"):
		return kindTarGz
	case strings.HasSuffix(lower, ".tar.bz2") || strings.HasSuffix(lower, ".tbz2"):
		return kindTarBz2
	case strings.HasSuffix(lower, ".tar.xz") || strings.HasSuffix(lower, ".txz"):
		return kindTarXz
	case strings.HasSuffix(lower, ".tar"):
		return kindTar
	}
	return kindUnknown
}

// subPath strips the archive's declared Extract prefix from name, reporting
// ok=false for entries outside that subtree (skip them).
func subPath(name, extract string) (string, bool) {
	name = strings.TrimPrefix(name, "./")
	if extract == "" {
		return name, true
	}
	extract = strings.Trim(extract, "/")
	if name == extract {
		return "", false
	}
	prefix := extract + "/"
	if !strings.HasPrefix(name, prefix) {
		return "", false
	}
	return strings.TrimPrefix(name, prefix), true
}

func extractTar(r io.Reader, extract, dest string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read tar entry")
		}

		rel, ok := subPath(hdr.Name, extract)
		if !ok || rel == "" {
			continue
		}
		target := filepath.Join(dest, filepath.FromSlash(rel))

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errors.Wrapf(err, "mkdir %q", target)
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return errors.Wrapf(err, "mkdir %q", filepath.Dir(target))
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return errors.Wrapf(err, "symlink %q", target)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return errors.Wrapf(err, "mkdir %q", filepath.Dir(target))
			}
			if err := writeRegularFile(target, tr, os.FileMode(hdr.Mode)); err != nil {
				return errors.Wrapf(err, "write %q", target)
			}
		}
	}
}

func extractZip(path string, startOffset int64, extract, dest string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return errors.Wrap(err, "open zip")
	}
	defer zr.Close()

	for _, f := range zr.File {
		rel, ok := subPath(f.Name, extract)
		if !ok || rel == "" {
			continue
		}
		target := filepath.Join(dest, filepath.FromSlash(rel))

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errors.Wrapf(err, "mkdir %q", target)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errors.Wrapf(err, "mkdir %q", filepath.Dir(target))
		}
		rc, err := f.Open()
		if err != nil {
			return errors.Wrapf(err, "open zip entry %q", f.Name)
		}
		err = writeRegularFile(target, rc, f.Mode())
		rc.Close()
		if err != nil {
			return errors.Wrapf(err, "write %q", target)
		}
	}
	return nil
}

func writeRegularFile(target string, r io.Reader, mode os.FileMode) error {
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, r)
	return err
}
