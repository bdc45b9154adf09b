// Licensed to NASA JPL under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. NASA JPL licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package fileaccess

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fibtoolbox/tiffscale/core/utils"
)

// Implementation of file access using local file system. The bucket is a root directory
type FSAccess struct {
}

func (fsa *FSAccess) ListObjects(rootPath string, prefix string) ([]string, error) {
	result := []string{}

	// Walk the deepest directory the prefix names fully, the rest of it is matched against file names
	walkRoot := fsa.filePath(rootPath, prefix)
	if len(prefix) > 0 && !strings.HasSuffix(prefix, "/") {
		walkRoot = filepath.Dir(walkRoot)
	}

	rootOnly := path.Join(rootPath) // Using path.Join to make it match the walked paths, cleans off ./ for example
	cleanPrefix := ""
	if len(prefix) > 0 {
		cleanPrefix = path.Clean(prefix)
		if strings.HasSuffix(prefix, "/") {
			cleanPrefix += "/"
		}
	}

	err := filepath.WalkDir(walkRoot, func(pathFound string, d fs.DirEntry, err error) error {
		if err != nil {
			// Listing something that isn't there is not an error, same as S3
			if errors.Is(err, fs.ErrNotExist) && pathFound == walkRoot {
				return filepath.SkipDir
			}
			return err
		}

		if d.IsDir() {
			return nil
		}

		// pathFound contains the root directory, so we chop it off
		toSave := filepath.ToSlash(pathFound)
		if len(rootOnly) > 0 && rootOnly != "." && strings.HasPrefix(toSave, rootOnly+"/") {
			toSave = toSave[len(rootOnly)+1:]
		}

		if strings.HasPrefix(toSave, cleanPrefix) {
			result = append(result, toSave)
		}
		return nil
	})

	if err != nil {
		return []string{}, err
	}

	sort.Strings(result)
	return result, nil
}

func (fsa *FSAccess) ObjectExists(rootPath string, path string) (bool, error) {
	info, err := os.Stat(fsa.filePath(rootPath, path))
	if err == nil {
		return !info.IsDir(), nil
	}
	if fsa.IsNotFoundError(err) {
		return false, nil
	}
	return false, err
}

func (fsa *FSAccess) ReadObject(rootPath string, path string) ([]byte, error) {
	return os.ReadFile(fsa.filePath(rootPath, path))
}

func (fsa *FSAccess) WriteObject(rootPath string, path string, data []byte) error {
	fullPath := fsa.filePath(rootPath, path)

	// Ensure any subdirs in between are created
	err := os.MkdirAll(filepath.Dir(fullPath), 0777)
	if err != nil {
		return err
	}

	// Write the file out, this will create if needed else truncate and write
	return os.WriteFile(fullPath, data, 0666)
}

func (fsa *FSAccess) ReadJSON(rootPath string, path string, itemsPtr interface{}, emptyIfNotFound bool) error {
	fileData, err := fsa.ReadObject(rootPath, path)

	if err != nil {
		if emptyIfNotFound && fsa.IsNotFoundError(err) {
			return nil
		}
		return err
	}

	return json.Unmarshal(fileData, itemsPtr)
}

func (fsa *FSAccess) WriteJSON(rootPath string, path string, itemsPtr interface{}) error {
	fileData, err := json.MarshalIndent(itemsPtr, "", utils.PrettyPrintIndentForJSON)
	if err != nil {
		return err
	}

	return fsa.WriteObject(rootPath, path, fileData)
}

func (fsa *FSAccess) IsNotFoundError(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func (fsa *FSAccess) filePath(rootPath string, filePath string) string {
	return filepath.FromSlash(path.Join(rootPath, filePath))
}
