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
	"encoding/json"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go/aws/arn"
	"github.com/pkg/errors"
)

type eventType int

const (
	unknownEventType eventType = iota
	s3EventType
	snsEventType
	sqsEventType
)

// Record - one S3 notification, however it reached us
type Record struct {
	EventSource    string
	EventSourceArn string
	AWSRegion      string
	S3             events.S3Entity
}

// Event - lambda input that may be an S3 event, or an S3 event delivered in the body of an
// SQS message or an SNS notification
type Event struct {
	Records []Record
}

// ObjectRef - an object in a bucket
type ObjectRef struct {
	Bucket string
	Key    string
}

// getEventType - Get the event type from the stream
func (event *Event) getEventType(data []byte) eventType {
	temp := struct {
		Records []map[string]interface{}
	}{}

	if err := json.Unmarshal(data, &temp); err != nil || len(temp.Records) <= 0 {
		return unknownEventType
	}

	record := temp.Records[0]

	eventSource := ""
	if es, ok := record["EventSource"].(string); ok {
		eventSource = es
	} else if es, ok := record["eventSource"].(string); ok {
		eventSource = es
	}

	switch eventSource {
	case "aws:s3":
		return s3EventType
	case "aws:sns":
		return snsEventType
	case "aws:sqs":
		return sqsEventType
	}

	return unknownEventType
}

func (event *Event) mapS3EventRecords(s3Event *events.S3Event) {
	for _, s3Record := range s3Event.Records {
		event.Records = append(event.Records, Record{
			EventSource:    s3Record.EventSource,
			EventSourceArn: s3Record.S3.Bucket.Arn,
			AWSRegion:      s3Record.AWSRegion,
			S3:             s3Record.S3,
		})
	}
}

func decodeWrappedS3Event(body string, wrapper string) (*events.S3Event, error) {
	s3Event := &events.S3Event{}
	err := json.Unmarshal([]byte(body), s3Event)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to decode %v message to an S3 event", wrapper)
	}

	if len(s3Event.Records) == 0 {
		return nil, errors.New("S3 Event Records is empty")
	}

	return s3Event, nil
}

// mapSNSEventRecords - S3 event is in the SNS message
func (event *Event) mapSNSEventRecords(snsEvent *events.SNSEvent) error {
	for _, snsRecord := range snsEvent.Records {
		s3Event, err := decodeWrappedS3Event(snsRecord.SNS.Message, "sns")
		if err != nil {
			return err
		}

		topicArn, err := arn.Parse(snsRecord.SNS.TopicArn)
		if err != nil {
			return errors.Wrap(err, "Failed to parse SNS topic ARN")
		}

		for _, s3Record := range s3Event.Records {
			event.Records = append(event.Records, Record{
				EventSource:    snsRecord.EventSource,
				EventSourceArn: snsRecord.SNS.TopicArn,
				AWSRegion:      topicArn.Region,
				S3:             s3Record.S3,
			})
		}
	}

	return nil
}

// mapSQSEventRecords - S3 event is in the SQS body
func (event *Event) mapSQSEventRecords(sqsEvent *events.SQSEvent) error {
	for _, sqsRecord := range sqsEvent.Records {
		s3Event, err := decodeWrappedS3Event(sqsRecord.Body, "sqs")
		if err != nil {
			return err
		}

		for _, s3Record := range s3Event.Records {
			event.Records = append(event.Records, Record{
				EventSource:    sqsRecord.EventSource,
				EventSourceArn: sqsRecord.EventSourceARN,
				AWSRegion:      sqsRecord.AWSRegion,
				S3:             s3Record.S3,
			})
		}
	}

	return nil
}

// UnmarshalJSON - Decode the JSON to the correct Event type
func (event *Event) UnmarshalJSON(data []byte) error {
	event.Records = []Record{}

	switch event.getEventType(data) {
	case s3EventType:
		s3Event := &events.S3Event{}
		if err := json.Unmarshal(data, s3Event); err != nil {
			return err
		}
		event.mapS3EventRecords(s3Event)
		return nil

	case snsEventType:
		snsEvent := &events.SNSEvent{}
		if err := json.Unmarshal(data, snsEvent); err != nil {
			return err
		}
		return event.mapSNSEventRecords(snsEvent)

	case sqsEventType:
		sqsEvent := &events.SQSEvent{}
		if err := json.Unmarshal(data, sqsEvent); err != nil {
			return err
		}
		return event.mapSQSEventRecords(sqsEvent)
	}

	return errors.New("Unrecognised event, expected S3, SNS or SQS records")
}

// Objects - bucket and (URL-decoded) key of each record
func (event *Event) Objects() ([]ObjectRef, error) {
	result := []ObjectRef{}
	for _, rec := range event.Records {
		// Keys in S3 notifications are URL encoded, with spaces as +
		key, err := url.QueryUnescape(rec.S3.Object.Key)
		if err != nil {
			return result, errors.Wrapf(err, "Failed to decode object key: %v", rec.S3.Object.Key)
		}

		result = append(result, ObjectRef{Bucket: rec.S3.Bucket.Name, Key: key})
	}
	return result, nil
}
