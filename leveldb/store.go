// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package leveldb keeps the final index in a LevelDB directory, one key per
// canonical identifier holding the JSON of its document.
package leveldb

import (
	"encoding/json"
	"strings"

	"github.com/cvmdata/fdk"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

var (
	_ fdk.IndexWriter    = &Store{}
	_ fdk.DocumentReader = &Store{}
)

// Store is an fdk.IndexWriter and fdk.DocumentReader backed by leveldb.
type Store struct {
	dirname string
	db      *leveldb.DB
}

type errorList []error

func (errs errorList) Error() string {
	errstrings := make([]string, len(errs))
	for i, err := range errs {
		errstrings[i] = err.Error()
	}
	return strings.Join(errstrings, "; ")
}

// Open opens (creating if needed) the leveldb directory dirname.
func Open(dirname string) (*Store, error) {
	db, err := leveldb.OpenFile(dirname, &opt.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "opening leveldb at %v", dirname)
	}
	return &Store{dirname: dirname, db: db}, nil
}

// Close closes the underlying leveldb instance.
func (s *Store) Close() error {
	return errors.Wrap(s.db.Close(), "closing leveldb")
}

// WriteIndex replaces the contents of the store with idx. Keys which are not
// in idx are deleted in the same batch the new documents are written in.
func (s *Store) WriteIndex(idx fdk.Index) error {
	batch := new(leveldb.Batch)
	iter := s.db.NewIterator(nil, nil)
	for iter.Next() {
		if _, ok := idx[string(iter.Key())]; !ok {
			batch.Delete(append([]byte(nil), iter.Key()...))
		}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return errors.Wrap(err, "listing existing keys")
	}

	var errs errorList
	for _, key := range idx.Keys() {
		val, err := json.Marshal(idx[key])
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "marshaling %s", key))
			continue
		}
		batch.Put([]byte(key), val)
	}
	if len(errs) > 0 {
		return errs
	}
	return errors.Wrap(s.db.Write(batch, &opt.WriteOptions{Sync: true}), "writing index")
}

// Document returns the document of id, given in any formatting.
func (s *Store) Document(id string) (*fdk.Document, error) {
	val, err := s.db.Get([]byte(fdk.Canonicalize(id)), nil)
	if err == leveldb.ErrNotFound {
		return nil, errors.Wrapf(fdk.ErrNotFound, "%s", id)
	} else if err != nil {
		return nil, errors.Wrapf(err, "getting %s", id)
	}
	doc := &fdk.Document{}
	if err := json.Unmarshal(val, doc); err != nil {
		return nil, errors.Wrapf(err, "unmarshaling %s", id)
	}
	return doc, nil
}

// Keys returns every key of the store in order.
func (s *Store) Keys() ([]string, error) {
	var keys []string
	iter := s.db.NewIterator(nil, nil)
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	iter.Release()
	return keys, errors.Wrap(iter.Error(), "iterating")
}
