/*
Copyright © 2019 the alfpp authors.
This file is part of alfpp.

alfpp is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

alfpp is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with alfpp.  If not, see <http://www.gnu.org/licenses/>.
*/

package cloud

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaybeDownload checks if path is an existing local file. If not, and
// path is an http(s) or blob URL, it downloads the file into dir and
// returns the path to the downloaded file. For shapefiles, it downloads
// all associated files and returns the path to the file with the ".shp"
// extension. Other paths are returned unchanged.
func MaybeDownload(ctx context.Context, path, dir string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	switch {
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return download(path, dir, func(fname string, w io.Writer) error {
			return downloadHTTP(ctx, fname, w)
		})
	case IsBlob(path):
		return download(path, dir, func(fname string, w io.Writer) error {
			b, err := ReadBlob(ctx, fname)
			if err != nil {
				return err
			}
			_, err = w.Write(b)
			return err
		})
	default:
		return path, nil
	}
}

// download fetches path and its associated files into dir using get.
func download(path, dir string, get func(fname string, w io.Writer) error) (string, error) {
	if dir == "" {
		var err error
		if dir, err = ioutil.TempDir("", "alfpp"); err != nil {
			return "", fmt.Errorf("cloud: creating temporary download directory: %v", err)
		}
	}
	fnames := expandShp(path)
	for _, fname := range fnames {
		local := filepath.Join(dir, filepath.Base(fname))
		w, err := os.Create(local)
		if err != nil {
			return "", fmt.Errorf("cloud: creating file for download: %v", err)
		}
		err = get(fname, w)
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil && filepath.Ext(fname) == ".prj" && fname != path {
			// Projection files are optional.
			os.Remove(local)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("cloud: downloading %s: %v", fname, err)
		}
	}
	return filepath.Join(dir, filepath.Base(fnames[0])), nil
}

func downloadHTTP(ctx context.Context, url string, w io.Writer) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req.WithContext(ctx))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s", url, resp.Status)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

// expandShp returns the given file + associated [.dbf, .shx, .prj]
// files if the given file has the .shp extension, and returns the given
// file otherwise.
func expandShp(filename string) []string {
	o := []string{filename}
	if filepath.Ext(filename) != ".shp" {
		return o
	}
	for _, newExt := range []string{".dbf", ".shx", ".prj"} {
		o = append(o, filename[0:len(filename)-4]+newExt)
	}
	return o
}
