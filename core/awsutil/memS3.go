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

package awsutil

import (
	"bytes"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// MemS3 - in-memory S3 for unit tests. Implements the calls S3 file access makes, any other
// S3API call panics (the embedded interface is nil)
type MemS3 struct {
	s3iface.S3API

	mutex   sync.Mutex
	objects map[string]map[string][]byte

	// Max keys returned per ListObjectsV2 call, to exercise continuation. 0 means 1000
	PageSize int
}

func NewMemS3() *MemS3 {
	return &MemS3{objects: map[string]map[string][]byte{}}
}

func noSuchKey(key string) error {
	return awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist: "+key, nil)
}

// Put - stores an object directly, for setting up tests
func (m *MemS3) Put(bucket string, key string, data []byte) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.objects == nil {
		m.objects = map[string]map[string][]byte{}
	}
	if _, ok := m.objects[bucket]; !ok {
		m.objects[bucket] = map[string][]byte{}
	}
	m.objects[bucket][key] = append([]byte{}, data...)
}

// Keys - sorted keys stored in a bucket
func (m *MemS3) Keys(bucket string) []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.sortedKeys(bucket, "")
}

func (m *MemS3) sortedKeys(bucket string, prefix string) []string {
	result := []string{}
	for key := range m.objects[bucket] {
		if strings.HasPrefix(key, prefix) {
			result = append(result, key)
		}
	}
	sort.Strings(result)
	return result
}

func (m *MemS3) get(bucket string, key string) ([]byte, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	data, ok := m.objects[bucket][key]
	return data, ok
}

func (m *MemS3) GetObject(input *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	data, ok := m.get(aws.StringValue(input.Bucket), aws.StringValue(input.Key))
	if !ok {
		return nil, noSuchKey(aws.StringValue(input.Key))
	}

	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func (m *MemS3) HeadObject(input *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
	data, ok := m.get(aws.StringValue(input.Bucket), aws.StringValue(input.Key))
	if !ok {
		return nil, awserr.New("NotFound", "Not Found", nil)
	}

	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(data)))}, nil
}

func (m *MemS3) PutObject(input *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	data := []byte{}
	if input.Body != nil {
		var err error
		data, err = io.ReadAll(input.Body)
		if err != nil {
			return nil, err
		}
	}

	m.Put(aws.StringValue(input.Bucket), aws.StringValue(input.Key), data)
	return &s3.PutObjectOutput{}, nil
}

func (m *MemS3) DeleteObject(input *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	// S3 doesn't complain about deleting something that isn't there
	delete(m.objects[aws.StringValue(input.Bucket)], aws.StringValue(input.Key))
	return &s3.DeleteObjectOutput{}, nil
}

// ListObjectsV2 - continuation token is just the index of the next key
func (m *MemS3) ListObjectsV2(input *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
	m.mutex.Lock()
	keys := m.sortedKeys(aws.StringValue(input.Bucket), aws.StringValue(input.Prefix))
	m.mutex.Unlock()

	start := 0
	if input.ContinuationToken != nil {
		var err error
		start, err = strconv.Atoi(*input.ContinuationToken)
		if err != nil || start < 0 || start > len(keys) {
			return nil, awserr.New("InvalidArgument", "The continuation token provided is incorrect", nil)
		}
	}

	pageSize := m.PageSize
	if pageSize <= 0 {
		pageSize = 1000
	}

	end := start + pageSize
	if end > len(keys) {
		end = len(keys)
	}

	result := &s3.ListObjectsV2Output{
		Name:        input.Bucket,
		Prefix:      input.Prefix,
		IsTruncated: aws.Bool(end < len(keys)),
		KeyCount:    aws.Int64(int64(end - start)),
	}

	for _, key := range keys[start:end] {
		result.Contents = append(result.Contents, &s3.Object{Key: aws.String(key)})
	}

	if end < len(keys) {
		result.NextContinuationToken = aws.String(strconv.Itoa(end))
	}

	return result, nil
}
