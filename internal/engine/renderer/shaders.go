package renderer

const vertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aTexCoord;
layout (location = 3) in vec4 aColor;

uniform mat4 uMVP;
uniform mat4 uModel;

out vec3 vNormal;
out vec2 vTexCoord;
out vec4 vColor;

void main() {
	gl_Position = uMVP * vec4(aPos, 1.0);
	vNormal = mat3(uModel) * aNormal;
	vTexCoord = aTexCoord;
	vColor = aColor;
}
`

const fragmentShader = `
#version 410 core

in vec3 vNormal;
in vec2 vTexCoord;
in vec4 vColor;

uniform sampler2D uTexture;
uniform bool uUseTexture;
uniform vec3 uLightDir;
uniform float uAmbient;
uniform float uDiffuse;

out vec4 FragColor;

void main() {
	vec4 base = uUseTexture ? texture(uTexture, vTexCoord) : vColor;
	if (base.a < 0.01) {
		discard;
	}
	float light = uAmbient + uDiffuse * max(dot(normalize(vNormal), uLightDir), 0.0);
	FragColor = vec4(base.rgb * min(light, 1.0), base.a);
}
`
