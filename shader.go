// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package immgl

import (
	"fmt"
	"os"

	"github.com/gogpu/immgl/device"
	"github.com/gogpu/immgl/matrix"
)

// DefaultVertexShader is the GLSL 330 vertex stage of the default program.
const DefaultVertexShader = `#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec4 vertexColor;
out vec2 fragTexCoord;
out vec4 fragColor;
uniform mat4 mvp;
void main()
{
    fragTexCoord = vertexTexCoord;
    fragColor = vertexColor;
    gl_Position = mvp*vec4(vertexPosition, 1.0);
}
`

// DefaultFragmentShader is the GLSL 330 fragment stage of the default program.
const DefaultFragmentShader = `#version 330
in vec2 fragTexCoord;
in vec4 fragColor;
out vec4 finalColor;
uniform sampler2D texture0;
uniform vec4 colDiffuse;
void main()
{
    vec4 texelColor = texture(texture0, fragTexCoord);
    finalColor = texelColor*colDiffuse*fragColor;
}
`

// defaultShaderSourcer is implemented by devices whose shading language is
// not GLSL.
type defaultShaderSourcer interface {
	DefaultShaderSource() (vertex, fragment string)
}

func (c *Context) defaultShaderSource(vs, fs string) (string, string) {
	if vs != "" && fs != "" {
		return vs, fs
	}
	if d, ok := c.dev.(defaultShaderSourcer); ok {
		return d.DefaultShaderSource()
	}
	return DefaultVertexShader, DefaultFragmentShader
}

func (c *Context) loadDefaultShader(vsOverride, fsOverride string) {
	vs, fs := c.defaultShaderSource(vsOverride, fsOverride)
	c.defaultVS = c.CompileShader(vs, device.StageVertex)
	c.defaultFS = c.CompileShader(fs, device.StageFragment)
	c.defaultProgram = c.LoadShaderProgram(c.defaultVS, c.defaultFS)

	if !c.defaultProgram.Valid() {
		Logger().Warn("immgl: failed to load default shader")
		c.defaultLocs = device.DefaultLocations()
		return
	}
	c.defaultLocs = device.QueryLocations(c.dev, c.defaultProgram)
	Logger().Info("immgl: default shader loaded", "id", c.defaultProgram)
}

func (c *Context) unloadDefaultShader() {
	c.dev.UseProgram(0)
	if c.defaultVS.Valid() {
		c.dev.DestroyShader(c.defaultVS)
	}
	if c.defaultFS.Valid() {
		c.dev.DestroyShader(c.defaultFS)
	}
	if c.defaultProgram.Valid() {
		c.dev.DestroyProgram(c.defaultProgram)
		Logger().Info("immgl: default shader unloaded", "id", c.defaultProgram)
	}
}

// CompileShader compiles one stage. It returns 0 and logs the diagnostics
// on failure.
func (c *Context) CompileShader(source string, stage device.ShaderStage) device.Shader {
	s, err := c.dev.CompileShader(stage, source)
	if err != nil {
		Logger().Warn("immgl: failed to compile shader", "stage", stage, "err", err)
		return 0
	}
	Logger().Info("immgl: shader compiled", "id", s, "stage", stage)
	return s
}

// LoadShaderProgram links a vertex and a fragment stage. The stages keep
// living; it returns 0 on link failure.
func (c *Context) LoadShaderProgram(vs, fs device.Shader) device.Program {
	p, err := c.dev.LinkProgram(vs, fs)
	if err != nil {
		Logger().Warn("immgl: failed to link shader program", "err", err)
		return 0
	}
	Logger().Info("immgl: shader program loaded", "id", p)
	return p
}

// LoadShaderCode builds a program from source. An empty or failing stage
// is replaced by the default stage; a program that fails to link is
// replaced by the default program. Stages compiled here are destroyed once
// linked.
func (c *Context) LoadShaderCode(vsCode, fsCode string) device.Program {
	var vs, fs device.Shader
	if vsCode != "" {
		vs = c.CompileShader(vsCode, device.StageVertex)
	}
	if fsCode != "" {
		fs = c.CompileShader(fsCode, device.StageFragment)
	}
	if !vs.Valid() {
		vs = c.defaultVS
	}
	if !fs.Valid() {
		fs = c.defaultFS
	}
	if vs == c.defaultVS && fs == c.defaultFS {
		return c.defaultProgram
	}

	p := c.LoadShaderProgram(vs, fs)
	if vs != c.defaultVS {
		c.dev.DestroyShader(vs)
	}
	if fs != c.defaultFS {
		c.dev.DestroyShader(fs)
	}
	if !p.Valid() {
		Logger().Warn("immgl: failed to load custom shader code, using default shader")
		return c.defaultProgram
	}
	return p
}

// LoadComputeShaderProgram links a single compute stage. It returns 0 if
// the device has no compute support or linking fails.
func (c *Context) LoadComputeShaderProgram(cs device.Shader) device.Program {
	if !c.dev.Capabilities().ComputeShaders {
		Logger().Warn("immgl: compute shaders not supported")
		return 0
	}
	p, err := c.dev.LinkProgram(cs)
	if err != nil {
		Logger().Warn("immgl: failed to link compute shader program", "err", err)
		return 0
	}
	Logger().Info("immgl: compute shader program loaded", "id", p)
	return p
}

// UnloadShaderProgram destroys p. The default program is owned by the
// context and left alone.
func (c *Context) UnloadShaderProgram(p device.Program) {
	if p == c.defaultProgram || !p.Valid() {
		return
	}
	c.dev.DestroyProgram(p)
	Logger().Info("immgl: shader program unloaded", "id", p)
}

// ShaderLocationsOf resolves the well-known attribute and uniform names of p.
func (c *Context) ShaderLocationsOf(p device.Program) device.Locations {
	return device.QueryLocations(c.dev, p)
}

// LocationUniform returns the location of uniform name in p, or -1.
func (c *Context) LocationUniform(p device.Program, name string) int {
	return c.dev.UniformLocation(p, name)
}

// LocationAttrib returns the location of attribute name in p, or -1.
func (c *Context) LocationAttrib(p device.Program, name string) int {
	return c.dev.AttributeLocation(p, name)
}

// SetUniformFloats sets a float uniform or uniform array of the program in
// use. values holds count*components entries.
func (c *Context) SetUniformFloats(loc int, typ device.UniformType, values []float32) {
	if loc < 0 {
		return
	}
	if err := checkUniform(typ, len(values), false); err != nil {
		Logger().Warn("immgl: set uniform", "loc", loc, "err", err)
		return
	}
	c.dev.SetUniformFloats(loc, typ, values)
}

// SetUniformInts sets an integer or sampler uniform of the program in use.
func (c *Context) SetUniformInts(loc int, typ device.UniformType, values []int32) {
	if loc < 0 {
		return
	}
	if err := checkUniform(typ, len(values), true); err != nil {
		Logger().Warn("immgl: set uniform", "loc", loc, "err", err)
		return
	}
	c.dev.SetUniformInts(loc, typ, values)
}

func checkUniform(typ device.UniformType, n int, integer bool) error {
	if typ.Integer() != integer {
		kind := "float"
		if integer {
			kind = "integer"
		}
		return fmt.Errorf("uniform type %d does not take %s values", typ, kind)
	}
	if n == 0 || n%typ.Components() != 0 {
		return fmt.Errorf("%d values for %d-component uniform", n, typ.Components())
	}
	return nil
}

// SetUniformMatrix sets a mat4 uniform of the program in use.
func (c *Context) SetUniformMatrix(loc int, m matrix.Matrix) {
	if loc < 0 {
		return
	}
	c.dev.SetUniformMatrix(loc, m)
}

// SetUniformSampler assigns tex to the sampler at loc. The texture gets the
// first free auxiliary unit, or keeps its unit if it already has one; the
// units are bound on the next flush.
func (c *Context) SetUniformSampler(loc int, tex device.Texture) {
	for _, t := range c.activeTextures {
		if t == tex {
			return
		}
	}
	for i, t := range c.activeTextures {
		if !t.Valid() {
			c.SetUniformInts(loc, device.UniformSampler2D, []int32{int32(1 + i)})
			c.activeTextures[i] = tex
			return
		}
	}
	Logger().Warn("immgl: no free texture unit for sampler", "loc", loc, "texture", tex,
		"units", len(c.activeTextures))
}

// SetShader makes p the program batches are drawn with. Changing the
// program flushes the active batch first.
func (c *Context) SetShader(p device.Program, locs device.Locations) {
	if c.program == p {
		return
	}
	_ = c.active.Draw()
	c.program = p
	c.locs = locs
}

// ReloadShader rebuilds old from the given source files. An empty path
// selects the default stage. On success the new program replaces old,
// also as the current shader, and old is unloaded; on failure old is
// returned unchanged.
func (c *Context) ReloadShader(old device.Program, vsPath, fsPath string) device.Program {
	vs, err := readSource(vsPath)
	if err != nil {
		Logger().Warn("immgl: reload shader", "err", err)
		return old
	}
	fs, err := readSource(fsPath)
	if err != nil {
		Logger().Warn("immgl: reload shader", "err", err)
		return old
	}
	p := c.LoadShaderCode(vs, fs)
	if p == c.defaultProgram && (vs != "" || fs != "") {
		Logger().Warn("immgl: shader reload failed, keeping previous program", "id", old)
		return old
	}
	if c.program == old {
		c.SetShader(p, c.ShaderLocationsOf(p))
	}
	c.UnloadShaderProgram(old)
	Logger().Info("immgl: shader reloaded", "old", old, "new", p)
	return p
}

func readSource(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read shader source: %w", err)
	}
	return string(b), nil
}
