package walk

import (
	"context"
	"io/fs"
	"iter"
	"path/filepath"
	"strings"
)

// FS recursively walks the filesystem rooted at root and yields the path of
// every regular file in lexical order, or an error if file information
// retrieval fails. Paths are prefixed with name. Hidden directories (build
// output, VCS metadata) are not entered and symlinks are not followed.
func FS(ctx context.Context, root fs.FS, name string) iter.Seq2[string, error] {
	if root == nil {
		panic("root is nil")
	}

	return func(yield func(string, error) bool) {
		fn := func(path string, d fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return fs.SkipAll
			}
			if err == nil && d.IsDir() {
				if path != "." && strings.HasPrefix(d.Name(), ".") {
					return fs.SkipDir
				}
				return nil
			}

			abspath := filepath.Join(name, filepath.FromSlash(path))
			if err == nil {
				var info fs.FileInfo
				info, err = d.Info()
				if err == nil && !info.Mode().IsRegular() {
					return nil
				}
			}
			if !yield(abspath, err) {
				return fs.SkipAll
			}
			return nil
		}
		_ = fs.WalkDir(root, ".", fn)
	}
}
