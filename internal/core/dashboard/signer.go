// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dashboard implements the artifact correlation core.
//
// This file holds the Presigned Access Issuer: the stateless translation
// from a storage key to a time-bounded, directly fetchable GET URL. The
// issuer fails closed; a signing failure yields an error the caller logs and
// renders as "no URL", never a broken link. Issued URLs must not be cached
// beyond their TTL, so every rendering pass asks for fresh ones.
package dashboard

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	credentialspb "cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
	"github.com/h2non/filetype"
)

// DefaultURLTTL is the validity window applied when the caller passes a
// non-positive TTL.
const DefaultURLTTL = time.Hour

// URLIssuer converts a storage key into a time-limited access URL.
type URLIssuer interface {
	Issue(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// GCSURLIssuer signs V4 GET URLs for objects in one bucket. When SignerEmail
// is set, signing is delegated to the IAM Credentials API so the process
// needs no local private key (the recommended setup on GCP infrastructure);
// otherwise the storage client's ambient credentials are used.
type GCSURLIssuer struct {
	Client      *storage.Client
	IAMClient   *credentials.IamCredentialsClient
	Bucket      string
	SignerEmail string
}

// Issue implements URLIssuer.
func (s *GCSURLIssuer) Issue(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", newError(KindSigning, "issuer.issue", key, fmt.Errorf("empty object key"))
	}
	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(effectiveTTL(ttl)),
		// Hint the browser's player at the payload type, mirroring the
		// response-content-type the pipeline's consumers expect.
		QueryParameters: url.Values{
			"response-content-type": []string{contentTypeFor(key)},
		},
	}
	if s.SignerEmail != "" && s.IAMClient != nil {
		opts.GoogleAccessID = s.SignerEmail
		opts.SignBytes = func(b []byte) ([]byte, error) {
			resp, err := s.IAMClient.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    fmt.Sprintf("projects/-/serviceAccounts/%s", s.SignerEmail),
				Payload: b,
			})
			if err != nil {
				return nil, fmt.Errorf("IAMClient.SignBlob: %w", err)
			}
			return resp.SignedBlob, nil
		}
	}

	signed, err := s.Client.Bucket(s.Bucket).SignedURL(key, opts)
	if err != nil {
		return "", newError(KindSigning, "issuer.issue", key, err)
	}
	return signed, nil
}

// effectiveTTL clamps a caller-supplied validity window. A ttl must be a
// positive duration; zero or negative falls back to DefaultURLTTL.
func effectiveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultURLTTL
	}
	return ttl
}

// contentTypeFor maps an object key's extension to the MIME type used as the
// playback hint. Unknown extensions fall back to video/mp4, the format the
// pipeline emits for both inputs and clips.
func contentTypeFor(key string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(key)), ".")
	if t := filetype.GetType(ext); t != filetype.Unknown {
		return t.MIME.Value
	}
	return "video/mp4"
}
