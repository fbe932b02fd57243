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

// Package boltdb keeps the final index in a BoltDB file, one key per
// canonical identifier holding the JSON of its document.
package boltdb

import (
	"encoding/json"
	"time"

	"github.com/boltdb/bolt"
	"github.com/cvmdata/fdk"
	"github.com/pkg/errors"
)

var fundBucket = []byte("funds")

var (
	_ fdk.IndexWriter    = &Store{}
	_ fdk.DocumentReader = &Store{}
)

// Store is an fdk.IndexWriter and fdk.DocumentReader backed by boltdb.
type Store struct {
	Db *bolt.DB
}

// Open opens (creating if needed) the bolt file at filename.
func Open(filename string) (*Store, error) {
	db, err := bolt.Open(filename, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening db file '%v'", filename)
	}
	return &Store{Db: db}, nil
}

// Close syncs and closes the underlying boltdb.
func (s *Store) Close() error {
	err := s.Db.Sync()
	if err != nil {
		return errors.Wrap(err, "syncing db")
	}
	return s.Db.Close()
}

// WriteIndex replaces the contents of the store with idx in a single
// transaction.
func (s *Store) WriteIndex(idx fdk.Index) error {
	err := s.Db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(fundBucket) != nil {
			if err := tx.DeleteBucket(fundBucket); err != nil {
				return errors.Wrap(err, "dropping old index")
			}
		}
		b, err := tx.CreateBucket(fundBucket)
		if err != nil {
			return errors.Wrap(err, "creating fund bucket")
		}
		for _, key := range idx.Keys() {
			val, err := json.Marshal(idx[key])
			if err != nil {
				return errors.Wrapf(err, "marshaling %s", key)
			}
			if err := b.Put([]byte(key), val); err != nil {
				return errors.Wrapf(err, "putting %s", key)
			}
		}
		return nil
	})
	return errors.Wrap(err, "writing index")
}

// Document returns the document of id, given in any formatting.
func (s *Store) Document(id string) (*fdk.Document, error) {
	key := fdk.Canonicalize(id)
	var doc *fdk.Document
	err := s.Db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(fundBucket)
		if b == nil {
			return nil
		}
		val := b.Get([]byte(key))
		if val == nil {
			return nil
		}
		doc = &fdk.Document{}
		return errors.Wrapf(json.Unmarshal(val, doc), "unmarshaling %s", key)
	})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.Wrapf(fdk.ErrNotFound, "%s", id)
	}
	return doc, nil
}

// Len returns the number of documents in the store.
func (s *Store) Len() (n int, err error) {
	err = s.Db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(fundBucket); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	return n, err
}
