package renderer

import "github.com/go-gl/mathgl/mgl32"

// Uniform names shared with shaders/lava.vs and shaders/lava.fs.
const (
	UniformProjection    = "uProjectionMatrix"
	UniformModelView     = "uModelViewMatrix"
	UniformModel         = "uModelMatrix"
	UniformNormal        = "uNormalMatrix"
	UniformView          = "uViewMatrix"
	UniformInvProjection = "uInvProjectionMatrix"
	UniformInvView       = "uInvViewMatrix"
	UniformTime          = "uTime"
	UniformCameraPos     = "uCameraPos"
	UniformResolution    = "uResolution"

	UniformLampRadius     = "uLampRadius"
	UniformLampTopRadius  = "uLampTopRadius"
	UniformLampHeight     = "uLampHeight"
	UniformLampBaseHeight = "uLampBaseHeight"
	UniformThreshold      = "uThreshold"
	UniformRadiusPadding  = "uRadiusPadding"

	UniformLightPos     = "uLightPos"
	UniformLightColor   = "uLightColor"
	UniformAmbientColor = "uAmbientColor"

	UniformBlobCount      = "uBlobCount"
	UniformBlobPositions  = "uBlobPositions"
	UniformBlobRadii      = "uBlobRadii"
	UniformBlobBlobbiness = "uBlobBlobbiness"
	UniformBlobColors     = "uBlobColors"

	UniformRenderMode       = "uRenderMode"
	UniformIsFullscreenQuad = "uIsFullscreenQuad"
	UniformDepthFront       = "uDepthFront"
	UniformDepthBack        = "uDepthBack"
	UniformUseBackDepth     = "uUseBackDepth"
)

// Render modes understood by the fragment shader.
const (
	ModeGlass    int32 = 0
	ModeMetaball int32 = 1
	ModeMetal    int32 = 2
)

// Texture units for the depth pre-pass results.
const (
	unitDepthFront = 0
	unitDepthBack  = 1
)

// uploadCamera sets the transform uniforms. The lamp sits at the origin, so
// the model matrix is identity.
func uploadCamera(prog Program, view, proj mgl32.Mat4) {
	model := mgl32.Ident4()
	modelView := view.Mul4(model)
	invView := view.Inv()

	prog.SetMat4(UniformProjection, proj)
	prog.SetMat4(UniformModelView, modelView)
	prog.SetMat4(UniformModel, model)
	prog.SetMat4(UniformNormal, model.Inv().Transpose())
	prog.SetMat4(UniformView, view)
	prog.SetMat4(UniformInvProjection, proj.Inv())
	prog.SetMat4(UniformInvView, invView)
	prog.SetVec3(UniformCameraPos, invView.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3())
}

// uploadBlobs sets the blob arrays, truncated to maxBlobs. uBlobCount is
// the truncated count so the shader never reads past the uploaded data.
// An empty lamp still uploads the single placeholder element so no array
// uniform keeps stale data from an earlier frame.
func uploadBlobs(prog Program, sim Simulation, maxBlobs int) int {
	count := sim.BlobCount()
	if count > maxBlobs {
		count = maxBlobs
	}
	prog.SetInt(UniformBlobCount, int32(count))

	n := max(count, 1)
	prog.SetVec4s(UniformBlobPositions, sim.BlobPositions()[:n])
	prog.SetFloats(UniformBlobRadii, sim.BlobRadii()[:n])
	prog.SetFloats(UniformBlobBlobbiness, sim.BlobBlobbiness()[:n])
	prog.SetVec3s(UniformBlobColors, sim.BlobColors()[:n])
	return count
}
