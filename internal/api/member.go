package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// SignInRequest is the POST /sign-in body.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResponse carries the issued bearer token pair.
type SignInResponse struct {
	GrantType    string `json:"grantType"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ChangePasswordRequest is the POST /member/password body.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldpassword"`
	NewPassword string `json:"newpassword"`
}

// UpdateParticipantRequest is the multipart POST /member/participant form.
// Avatar may be nil when only the nickname changes.
type UpdateParticipantRequest struct {
	TeamParticipantsID int64
	TeamNickName       string
	AvatarFilename     string
	Avatar             io.Reader
}

// SignIn exchanges credentials for a bearer token pair.
func (c *Client) SignIn(ctx context.Context, req SignInRequest) (*SignInResponse, error) {
	var resp SignInResponse
	if err := c.post(ctx, "/sign-in", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MyPage fetches the authenticated member's global profile.
func (c *Client) MyPage(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "/my-page", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListTeams fetches one page of the member's teams, oldest first.
func (c *Client) ListTeams(ctx context.Context, page, size int) (*Page[Team], error) {
	q := url.Values{
		"page": {strconv.Itoa(page)},
		"size": {strconv.Itoa(size)},
		"sort": {"createDt,asc"},
	}
	var result Page[Team]
	if err := c.get(ctx, "/team/list", q, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListParticipants fetches the member's participant records, one per team.
func (c *Client) ListParticipants(ctx context.Context) ([]Team, error) {
	var teams []Team
	if err := c.get(ctx, "/member/participants", nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// UpdateParticipant edits a team participant profile. The avatar image is
// sent as multipart form data; everything else in the API is JSON.
func (c *Client) UpdateParticipant(ctx context.Context, req UpdateParticipantRequest) error {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if err := w.WriteField("teamNickName", req.TeamNickName); err != nil {
		return fmt.Errorf("write form field: %w", err)
	}
	if err := w.WriteField("teamParticipantsId", strconv.FormatInt(req.TeamParticipantsID, 10)); err != nil {
		return fmt.Errorf("write form field: %w", err)
	}
	if req.Avatar != nil {
		part, err := w.CreateFormFile("participantImg", req.AvatarFilename)
		if err != nil {
			return fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, req.Avatar); err != nil {
			return fmt.Errorf("copy avatar: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish form: %w", err)
	}

	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/member/participant"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("POST /member/participant: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	return nil
}

// LeaveTeam removes the authenticated member's participant record from a
// team. The sole-leader guard is enforced by callers before this is issued.
func (c *Client) LeaveTeam(ctx context.Context, teamID int64) error {
	return c.delete(ctx, fmt.Sprintf("/team/%d/participant", teamID), nil, nil)
}

// ChangePassword replaces the member's password.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	return c.post(ctx, "/member/password", nil, req, nil)
}
