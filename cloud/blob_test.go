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
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestBlobRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := "file://" + filepath.ToSlash(filepath.Join(dir, "out", "db.json"))
	if !IsBlob(path) {
		t.Fatalf("%s should be a blob", path)
	}
	want := []byte(`{"_default": {}}`)
	if err := WriteBlob(ctx, path, want, 2, nil); err != nil {
		t.Fatal(err)
	}
	have, err := ReadBlob(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if string(have) != string(want) {
		t.Errorf("%s != %s", have, want)
	}
}

func TestOpenBucketInvalid(t *testing.T) {
	if _, err := OpenBucket(context.Background(), "ftp://bucket"); err == nil {
		t.Error("want error for unsupported provider")
	}
	if _, _, err := splitBlob("gs://bucket"); err == nil {
		t.Error("want error for missing key")
	}
}

func TestMaybeDownload(t *testing.T) {
	ctx := context.Background()

	t.Run("local", func(t *testing.T) {
		f := filepath.Join(t.TempDir(), "a.tif")
		if err := ioutil.WriteFile(f, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		have, err := MaybeDownload(ctx, f, "")
		if err != nil || have != f {
			t.Errorf("%s, %v", have, err)
		}
	})

	t.Run("http shapefile", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if filepath.Ext(r.URL.Path) == ".prj" {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, r.URL.Path)
		}))
		defer srv.Close()
		dir := t.TempDir()
		have, err := MaybeDownload(ctx, srv.URL+"/regions/ak.shp", dir)
		if err != nil {
			t.Fatal(err)
		}
		if want := filepath.Join(dir, "ak.shp"); have != want {
			t.Errorf("%s != %s", have, want)
		}
		for _, ext := range []string{".shp", ".dbf", ".shx"} {
			b, err := ioutil.ReadFile(filepath.Join(dir, "ak"+ext))
			if err != nil {
				t.Fatal(err)
			}
			if string(b) != "/regions/ak"+ext {
				t.Errorf("%s: %s", ext, b)
			}
		}
		if _, err := os.Stat(filepath.Join(dir, "ak.prj")); !os.IsNotExist(err) {
			t.Error("missing projection file should not be created")
		}
	})

	t.Run("http error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()
		if _, err := MaybeDownload(ctx, srv.URL+"/x.tif", t.TempDir()); err == nil {
			t.Error("want error for missing file")
		}
	})

	t.Run("blob", func(t *testing.T) {
		src := t.TempDir()
		if err := ioutil.WriteFile(filepath.Join(src, "veg.yaml"), []byte("1: Tundra\n"), 0644); err != nil {
			t.Fatal(err)
		}
		dir := t.TempDir()
		have, err := MaybeDownload(ctx, "file://"+filepath.ToSlash(filepath.Join(src, "veg.yaml")), dir)
		if err != nil {
			t.Fatal(err)
		}
		b, err := ioutil.ReadFile(have)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != "1: Tundra\n" {
			t.Errorf("downloaded %q", b)
		}
	})
}
