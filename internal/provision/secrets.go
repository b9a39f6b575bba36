// Package provision bootstraps the service databases and their credentials
// on a MySQL cluster. It runs as a CloudFormation custom resource.
package provision

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/juju/errors"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("servicemesh.provision")

// DefaultRegion is used when AWS_REGION is unset.
const DefaultRegion = "us-east-1"

// Credentials is the JSON document stored in a database secret. Host and
// Port are only meaningful for the admin secret.
type Credentials struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SecretStore resolves a secret id (name or ARN) to credentials.
type SecretStore interface {
	Credentials(ctx context.Context, id string) (Credentials, error)
}

// SecretsManagerClient is the subset of the Secrets Manager API in use.
type SecretsManagerClient interface {
	GetSecretValue(
		ctx context.Context,
		input *secretsmanager.GetSecretValueInput,
		opts ...func(*secretsmanager.Options),
	) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretStore reads credentials from AWS Secrets Manager.
type AWSSecretStore struct {
	client SecretsManagerClient
}

func NewAWSSecretStore(client SecretsManagerClient) *AWSSecretStore {
	return &AWSSecretStore{client: client}
}

// NewSecretsManagerClient builds a client from the default credential
// chain for region.
func NewSecretsManagerClient(ctx context.Context, region string) (*secretsmanager.Client, error) {
	if region == "" {
		region = DefaultRegion
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, errors.Annotate(err, "loading AWS config")
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

func (s *AWSSecretStore) Credentials(ctx context.Context, id string) (Credentials, error) {
	if id == "" {
		return Credentials{}, errors.NotValidf("empty secret id")
	}
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		logger.Errorf("retrieving secret %s: %v", id, err)
		return Credentials{}, errors.Annotatef(err, "retrieving secret %s", id)
	}
	creds, err := ParseCredentials(aws.ToString(out.SecretString))
	if err != nil {
		return Credentials{}, errors.Annotatef(err, "secret %s", id)
	}
	logger.Infof("retrieved secret %s", id)
	return creds, nil
}

type secretDocument struct {
	Host     string          `json:"host"`
	Port     json.RawMessage `json:"port"`
	Username string          `json:"username"`
	Password string          `json:"password"`
}

// ParseCredentials decodes a secret string. The port may be stored either
// as a JSON number or as a string.
func ParseCredentials(raw string) (Credentials, error) {
	var doc secretDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return Credentials{}, errors.NotValidf("secret JSON (%v)", err)
	}
	if doc.Username == "" {
		return Credentials{}, errors.NotValidf("secret without username")
	}
	creds := Credentials{
		Host:     doc.Host,
		Username: doc.Username,
		Password: doc.Password,
	}
	if len(doc.Port) > 0 && string(doc.Port) != "null" {
		port, err := strconv.Atoi(strings.Trim(string(doc.Port), `"`))
		if err != nil {
			return Credentials{}, errors.NotValidf("secret port %s", doc.Port)
		}
		creds.Port = port
	}
	return creds, nil
}
