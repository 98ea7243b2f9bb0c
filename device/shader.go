// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

// Vertex attribute names and the slots they are bound to when a program is
// linked.
const (
	AttribPosition  = "vertexPosition"
	AttribTexCoord  = "vertexTexCoord"
	AttribNormal    = "vertexNormal"
	AttribColor     = "vertexColor"
	AttribTangent   = "vertexTangent"
	AttribTexCoord2 = "vertexTexCoord2"
)

// Default attribute slots.
const (
	SlotPosition  = 0
	SlotTexCoord  = 1
	SlotNormal    = 2
	SlotColor     = 3
	SlotTangent   = 4
	SlotTexCoord2 = 5
)

// DefaultAttribBindings lists the attribute name to slot assignments every
// program gets at link time.
var DefaultAttribBindings = []struct {
	Name string
	Slot int
}{
	{AttribPosition, SlotPosition},
	{AttribTexCoord, SlotTexCoord},
	{AttribNormal, SlotNormal},
	{AttribColor, SlotColor},
	{AttribTangent, SlotTangent},
	{AttribTexCoord2, SlotTexCoord2},
}

// Uniform names understood by the default program.
const (
	UniformMVP        = "mvp"
	UniformView       = "matView"
	UniformProjection = "matProjection"
	UniformModel      = "matModel"
	UniformNormal     = "matNormal"
	UniformColor      = "colDiffuse"
	SamplerTexture0   = "texture0"
	SamplerTexture1   = "texture1"
	SamplerTexture2   = "texture2"
)

// ShaderLocation indexes a program's location table.
type ShaderLocation int

const (
	LocVertexPosition ShaderLocation = iota
	LocVertexTexCoord01
	LocVertexTexCoord02
	LocVertexNormal
	LocVertexTangent
	LocVertexColor
	LocMatrixMVP
	LocMatrixView
	LocMatrixProjection
	LocMatrixModel
	LocMatrixNormal
	LocVectorView
	LocColorDiffuse
	LocColorSpecular
	LocColorAmbient
	LocMapAlbedo
	LocMapMetalness
	LocMapNormal
	LocMapRoughness
	LocMapOcclusion
	LocMapEmission
	LocMapHeight
	LocMapCubemap
	LocMapIrradiance
	LocMapPrefilter
	LocMapBRDF
)

// Aliases kept for material code written against the diffuse/specular names.
const (
	LocMapDiffuse  = LocMapAlbedo
	LocMapSpecular = LocMapMetalness
)

// MaxShaderLocations is the length of a location table.
const MaxShaderLocations = 32

// Locations maps ShaderLocation indices to device uniform/attribute
// locations. -1 marks an unused slot.
type Locations [MaxShaderLocations]int

// NewLocations returns a table with every slot unused.
func NewLocations() Locations {
	var l Locations
	for i := range l {
		l[i] = -1
	}
	return l
}

// Get returns the location stored for slot i.
func (l Locations) Get(i ShaderLocation) int {
	return l[i]
}

// DefaultLocations returns a table with the attribute slots of
// DefaultAttribBindings filled in and every uniform slot unused.
func DefaultLocations() Locations {
	l := NewLocations()
	l[LocVertexPosition] = SlotPosition
	l[LocVertexTexCoord01] = SlotTexCoord
	l[LocVertexTexCoord02] = SlotTexCoord2
	l[LocVertexNormal] = SlotNormal
	l[LocVertexTangent] = SlotTangent
	l[LocVertexColor] = SlotColor
	return l
}

var attribNames = []struct {
	loc  ShaderLocation
	name string
}{
	{LocVertexPosition, AttribPosition},
	{LocVertexTexCoord01, AttribTexCoord},
	{LocVertexTexCoord02, AttribTexCoord2},
	{LocVertexNormal, AttribNormal},
	{LocVertexTangent, AttribTangent},
	{LocVertexColor, AttribColor},
}

var uniformNames = []struct {
	loc  ShaderLocation
	name string
}{
	{LocMatrixMVP, UniformMVP},
	{LocMatrixView, UniformView},
	{LocMatrixProjection, UniformProjection},
	{LocMatrixModel, UniformModel},
	{LocMatrixNormal, UniformNormal},
	{LocColorDiffuse, UniformColor},
	{LocMapDiffuse, SamplerTexture0},
	{LocMapSpecular, SamplerTexture1},
	{LocMapNormal, SamplerTexture2},
}

// QueryLocations resolves the well-known attribute and uniform names of
// program p on d.
func QueryLocations(d Device, p Program) Locations {
	l := NewLocations()
	for _, a := range attribNames {
		l[a.loc] = d.AttributeLocation(p, a.name)
	}
	for _, u := range uniformNames {
		l[u.loc] = d.UniformLocation(p, u.name)
	}
	return l
}
