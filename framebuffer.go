// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package immgl

import "github.com/gogpu/immgl/device"

// LoadFramebuffer creates an empty offscreen render target. It returns 0 if
// the device refuses it.
func (c *Context) LoadFramebuffer(width, height int) device.Framebuffer {
	fb, err := c.dev.CreateFramebuffer(width, height)
	if err != nil {
		Logger().Warn("immgl: failed to load framebuffer", "err", err)
		return 0
	}
	return fb
}

// FramebufferAttach attaches tex to fb at attach. Color attachments accept
// 2D textures, renderbuffers and cube faces; depth and stencil accept 2D
// textures and renderbuffers.
func (c *Context) FramebufferAttach(fb device.Framebuffer, tex device.Texture, attach device.Attachment, texType device.AttachTextureType, mipLevel int) {
	switch {
	case attach.IsColor():
	case attach == device.AttachDepth || attach == device.AttachStencil:
		if texType != device.AttachTexture2D && texType != device.AttachRenderbuffer {
			Logger().Warn("immgl: depth and stencil attachments take a texture or renderbuffer",
				"framebuffer", fb, "type", texType)
			return
		}
	default:
		Logger().Warn("immgl: unknown framebuffer attachment", "framebuffer", fb, "attach", attach)
		return
	}
	if err := c.dev.AttachFramebuffer(fb, tex, attach, texType, mipLevel); err != nil {
		Logger().Warn("immgl: framebuffer attach failed", "framebuffer", fb, "err", err)
		return
	}
	if attach == device.AttachDepth {
		c.fbDepth[fb] = tex
	}
}

// FramebufferComplete reports whether fb can be rendered to.
func (c *Context) FramebufferComplete(fb device.Framebuffer) bool {
	if err := c.dev.FramebufferStatus(fb); err != nil {
		Logger().Warn("immgl: framebuffer is not complete", "framebuffer", fb, "err", err)
		return false
	}
	return true
}

// UnloadFramebuffer destroys fb together with its depth attachment.
// Color attachments stay alive.
func (c *Context) UnloadFramebuffer(fb device.Framebuffer) {
	if depth, ok := c.fbDepth[fb]; ok {
		c.dev.DestroyTexture(depth)
		delete(c.fbDepth, fb)
	}
	c.dev.BindFramebuffer(0)
	c.dev.DestroyFramebuffer(fb)
	Logger().Info("immgl: framebuffer unloaded", "framebuffer", fb)
}
