package api

import "context"

// GetSelf returns the bot's own profile. It is the cheapest call that proves
// the token works.
func (c *Client) GetSelf(ctx context.Context) (*SelfResponse, error) {
	var resp SelfResponse
	if err := c.get(ctx, "/self/get", newParams(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetFileInfo returns metadata and a download URL for fileID
func (c *Client) GetFileInfo(ctx context.Context, fileID string) (*FileInfo, error) {
	p := newParams()
	p.set("fileId", fileID)

	var resp FileInfo
	if err := c.get(ctx, "/files/getInfo", p, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
