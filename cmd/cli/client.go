package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/and161185/coursemart/internal/model"
	"github.com/and161185/coursemart/internal/service"
)

// apiError is a non-2xx answer from the server.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

type errorBody struct {
	Error string `json:"error"`
}

type authResp struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type createResp struct {
	Message  string `json:"message"`
	CourseID string `json:"courseId"`
}

type messageResp struct {
	Message string `json:"message"`
}

type purchasedResp struct {
	PurchasedCourses []model.Course `json:"purchasedCourses"`
}

// apiClient talks to the course marketplace HTTP API.
type apiClient struct {
	r *resty.Client
}

func newAPIClient(baseURL, caPath string, insecure bool, timeout time.Duration) *apiClient {
	r := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second)
	r.AddRetryCondition(retryCondition)

	if insecure {
		r.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec // dev only
	} else if caPath != "" {
		r.SetRootCertificate(caPath)
	}
	return &apiClient{r: r}
}

// retryCondition retries only reads on transport errors and gateway failures.
func retryCondition(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return true
	}
	switch r.StatusCode() {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func rolePrefix(role model.Role) string {
	if role == model.RoleAdmin {
		return "/admin"
	}
	return "/users"
}

func (c *apiClient) req(ctx context.Context, bearer string) *resty.Request {
	rq := c.r.R().SetContext(ctx).SetError(&errorBody{})
	if bearer != "" {
		rq.SetAuthToken(bearer)
	}
	return rq
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsError() {
		return nil
	}
	e := &apiError{Status: resp.StatusCode()}
	if b, ok := resp.Error().(*errorBody); ok && b != nil {
		e.Message = b.Error
	}
	return e
}

func (c *apiClient) signup(ctx context.Context, role model.Role, username, password string) (authResp, error) {
	var out authResp
	err := check(c.req(ctx, "").
		SetBody(service.Credentials{Username: username, Password: password}).
		SetResult(&out).
		Post(rolePrefix(role) + "/signup"))
	return out, err
}

func (c *apiClient) login(ctx context.Context, role model.Role, username, password string) (authResp, error) {
	var out authResp
	err := check(c.req(ctx, "").
		SetBody(service.Credentials{Username: username, Password: password}).
		SetResult(&out).
		Post(rolePrefix(role) + "/login"))
	return out, err
}

// courses lists the full catalog with an admin token, or the published
// catalog with a user token.
func (c *apiClient) courses(ctx context.Context, role model.Role, bearer string) ([]model.Course, error) {
	var out []model.Course
	err := check(c.req(ctx, bearer).SetResult(&out).Get(rolePrefix(role) + "/courses"))
	return out, err
}

func (c *apiClient) createCourse(ctx context.Context, bearer string, in service.CourseInput) (string, error) {
	var out createResp
	err := check(c.req(ctx, bearer).SetBody(in).SetResult(&out).Post("/admin/courses"))
	return out.CourseID, err
}

func (c *apiClient) updateCourse(ctx context.Context, bearer, id string, in service.CourseInput) error {
	return check(c.req(ctx, bearer).
		SetBody(in).
		SetResult(&messageResp{}).
		SetPathParam("courseId", id).
		Put("/admin/courses/{courseId}"))
}

func (c *apiClient) buy(ctx context.Context, bearer, id string) error {
	return check(c.req(ctx, bearer).
		SetResult(&messageResp{}).
		SetPathParam("courseId", id).
		Post("/users/courses/{courseId}"))
}

func (c *apiClient) purchased(ctx context.Context, bearer string) ([]model.Course, error) {
	var out purchasedResp
	err := check(c.req(ctx, bearer).SetResult(&out).Get("/users/purchasedCourses"))
	return out.PurchasedCourses, err
}
