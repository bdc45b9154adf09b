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

// Lambda triggered by S3 uploads (directly, or via SNS/SQS). Every new TIFF gets its scaling
// extracted into the output directories next to the one it was uploaded to. Config comes from
// TIFFSCALE_CONFIG_* env vars, optionally on top of a JSON file named by TIFFSCALE_CONFIG_FILE
package main

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/fibtoolbox/tiffscale/core/awsutil"
	"github.com/fibtoolbox/tiffscale/core/batch"
	"github.com/fibtoolbox/tiffscale/core/config"
	"github.com/fibtoolbox/tiffscale/core/fileaccess"
	"github.com/fibtoolbox/tiffscale/core/logger"
	"github.com/getsentry/sentry-go"
)

const configFileEnvVar = "TIFFSCALE_CONFIG_FILE"

func HandleRequest(ctx context.Context, event awsutil.Event) (string, error) {
	cfg, err := config.Load(os.Getenv(configFileEnvVar))
	if err != nil {
		return "", err
	}

	var iLog logger.ILogger = logger.NewStdOutLogger(cfg.Level())
	if len(cfg.SentryDSN) > 0 {
		err = sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.EnvironmentName,
		})
		if err != nil {
			iLog.Errorf("Sentry init failed: %v", err)
		} else {
			iLog = &logger.SentryLogger{Next: iLog}
		}
	}

	sess, err := awsutil.GetSessionWithRegion(cfg.AWSRegion)
	if err != nil {
		return "", err
	}

	return handleEvent(event, fileaccess.MakeS3Access(awsutil.GetS3(sess)), cfg, iLog)
}

// Processes the TIFFs named by the event. A failing file is logged and doesn't stop the rest, and we don't
// return an error for it as that would only get the whole event retried
func handleEvent(event awsutil.Event, fs fileaccess.FileAccess, cfg config.Config, iLog logger.ILogger) (string, error) {
	objects, err := event.Objects()
	if err != nil {
		return "", err
	}

	processors := map[string]*batch.Processor{}
	processed, skipped, failed := 0, 0, 0

	for _, obj := range objects {
		p, ok := processors[obj.Bucket]
		if !ok {
			p, err = batch.NewProcessor(fs, obj.Bucket, cfg, nil, iLog)
			if err != nil {
				return "", err
			}
			processors[obj.Bucket] = p
		}

		// Our own output triggers us too
		if !batch.IsTIFFName(obj.Key) || p.IsOutputPath(obj.Key) {
			iLog.Debugf("Ignoring s3://%v/%v", obj.Bucket, obj.Key)
			skipped++
			continue
		}

		dir := path.Dir(obj.Key)
		if dir == "." {
			dir = ""
		}

		result := p.ProcessFile(dir, path.Base(obj.Key))
		switch result.Outcome {
		case batch.OutcomeFailed:
			iLog.Errorf("s3://%v/%v: %v", obj.Bucket, obj.Key, result.Error)
			failed++
		case batch.OutcomeSkipped:
			skipped++
		default:
			processed++
		}

		for _, w := range result.Warnings {
			iLog.Infof("s3://%v/%v: %v", obj.Bucket, obj.Key, w)
		}
	}

	return fmt.Sprintf("processed: %v, skipped: %v, failed: %v", processed, skipped, failed), nil
}

func main() {
	lambda.Start(HandleRequest)
}
