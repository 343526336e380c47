package controller

import (
	"context"
)

// MoveAz moves the dome to the given azimuth (rad) at the given rate
// (rad/s, positive towards increasing azimuth).
func (c *Client) MoveAz(ctx context.Context, azimuth, azRate float64) error {
	return c.Command(ctx, "moveAz", map[string]any{"azimuth": azimuth, "azRate": azRate})
}

// MoveEl moves the light and wind screen to the given elevation (rad).
func (c *Client) MoveEl(ctx context.Context, elevation float64) error {
	return c.Command(ctx, "moveEl", map[string]any{"elevation": elevation})
}

// CrawlAz crawls the dome at the given rate (rad/s).
func (c *Client) CrawlAz(ctx context.Context, azRate float64) error {
	return c.Command(ctx, "crawlAz", map[string]any{"azRate": azRate})
}

// CrawlEl crawls the light and wind screen at the given rate (rad/s).
func (c *Client) CrawlEl(ctx context.Context, elRate float64) error {
	return c.Command(ctx, "crawlEl", map[string]any{"elRate": elRate})
}

// StopAz stops dome azimuth motion.
func (c *Client) StopAz(ctx context.Context) error {
	return c.Command(ctx, "stopAz", nil)
}

// StopEl stops light and wind screen motion.
func (c *Client) StopEl(ctx context.Context) error {
	return c.Command(ctx, "stopEl", nil)
}

// Stop stops all motion.
func (c *Client) Stop(ctx context.Context) error {
	return c.Command(ctx, "stop", nil)
}

// SetLouvers commands per-louvre positions (deg). A negative position
// leaves that louvre unchanged.
func (c *Client) SetLouvers(ctx context.Context, position []float64) error {
	return c.Command(ctx, "setLouvers", map[string]any{"position": position})
}

// CloseLouvers closes all louvres.
func (c *Client) CloseLouvers(ctx context.Context) error {
	return c.Command(ctx, "closeLouvers", nil)
}

// StopLouvers stops all louvre motion.
func (c *Client) StopLouvers(ctx context.Context) error {
	return c.Command(ctx, "stopLouvers", nil)
}

// OpenShutter opens the aperture shutter.
func (c *Client) OpenShutter(ctx context.Context) error {
	return c.Command(ctx, "openShutter", nil)
}

// CloseShutter closes the aperture shutter.
func (c *Client) CloseShutter(ctx context.Context) error {
	return c.Command(ctx, "closeShutter", nil)
}

// StopShutter stops shutter motion.
func (c *Client) StopShutter(ctx context.Context) error {
	return c.Command(ctx, "stopShutter", nil)
}

// Park parks the dome.
func (c *Client) Park(ctx context.Context) error {
	return c.Command(ctx, "park", nil)
}

// SetTemperature sets the target temperature (deg C) for the thermal
// control subsystem.
func (c *Client) SetTemperature(ctx context.Context, temperature float64) error {
	return c.Command(ctx, "setTemperature", map[string]any{"temperature": temperature})
}
