package github

import (
	"fmt"
	"net/http"
	"strings"

	"ghmerge/internal/domain/pullrequest"
	"ghmerge/internal/pkg/client"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const defaultHost = "api.github.com"

var ErrPullRequestNotFound = errors.New("pull request not found")

type ClientOptions struct {
	Host       string
	Token      string
	Repository *client.Repository
}

// CloudClient talks to the GitHub REST API. Only the single pull request
// lookup the merge flow needs is implemented.
type CloudClient struct {
	host       string
	token      string
	repository *client.Repository
	rc         *resty.Client
}

func New(o *ClientOptions) *CloudClient {
	host := o.Host
	if host == "" {
		host = defaultHost
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}

	return &CloudClient{
		host:       host,
		token:      o.Token,
		repository: o.Repository,
		rc:         resty.New(),
	}
}

type githubError struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}

func (c *CloudClient) Fetch(id int) (*pullrequest.Entity, error) {
	url := fmt.Sprintf(
		"%s/repos/%s/%s/pulls/%d",
		c.host,
		c.repository.Owner,
		c.repository.Name,
		id,
	)

	req := c.rc.R().
		SetHeader("Accept", "application/vnd.github+json").
		SetError(githubError{})
	if c.token != "" {
		req.SetAuthToken(c.token)
	}

	r, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	if r.StatusCode() == http.StatusNotFound {
		return nil, ErrPullRequestNotFound
	}
	if r.IsError() {
		return nil, errors.New(string(r.Body()))
	}

	v := gjson.ParseBytes(r.Body())
	pr := &pullrequest.Entity{
		ID:          int(v.Get("number").Int()),
		Title:       strings.TrimSpace(v.Get("title").String()),
		Body:        v.Get("body").String(),
		State:       pullrequest.State(v.Get("state").String()),
		Author:      v.Get("user.login").String(),
		Source:      v.Get("head.ref").String(),
		HeadSHA:     v.Get("head.sha").String(),
		Destination: v.Get("base.ref").String(),
		Mergeable:   v.Get("mergeable").Bool(),
		URL:         v.Get("html_url").String(),
	}
	if v.Get("merged").Bool() {
		pr.State = pullrequest.StateMerged
	}

	return pr, nil
}
