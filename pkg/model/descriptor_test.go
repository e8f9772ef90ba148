package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/blockfetch/pkg/errors"
)

const vanillaDescriptor = `{
  "id": "1.20.1",
  "type": "release",
  "mainClass": "net.minecraft.client.main.Main",
  "assets": "5",
  "complianceLevel": 1,
  "assetIndex": {"id": "5", "sha1": "d3a1ef1c3a0d2b0c6e3f0d9a9f1e6c3b2a1f0e9d", "size": 411683, "totalSize": 622716064, "url": "https://meta.example/indexes/5.json"},
  "downloads": {
    "client": {"sha1": "0c3ec587af28e5a785c0b4a7b8a30f9a8f78f838", "size": 23028853, "url": "https://cdn.example/client.jar"},
    "server": {"sha1": "84194a2f286ef7c14ed7ce0090dba59902951553", "size": 49150256, "url": "https://cdn.example/server.jar"}
  },
  "javaVersion": {"component": "java-runtime-gamma", "majorVersion": 17},
  "libraries": [
    {
      "name": "com.mojang:brigadier:1.1.8",
      "downloads": {"artifact": {"path": "com/mojang/brigadier/1.1.8/brigadier-1.1.8.jar", "sha1": "5244ce82c3337bba4a196a3ce858bfaecc74404a", "size": 76906, "url": "https://libraries.example/brigadier-1.1.8.jar"}}
    },
    {
      "name": "org.lwjgl.lwjgl:lwjgl-platform:2.9.4",
      "downloads": {"classifiers": {"natives-linux": {"path": "org/lwjgl/lwjgl-platform-natives-linux.jar", "sha1": "931074f46c795d2f7b30ed6395df5715cfd7675b", "size": 578680, "url": "https://libraries.example/natives-linux.jar"}}},
      "natives": {"linux": "natives-linux", "osx": "natives-osx"},
      "rules": [{"action": "allow"}, {"action": "disallow", "os": {"name": "osx"}}]
    }
  ]
}`

func TestPackageDescriptor_DecodeVanilla(t *testing.T) {
	var d PackageDescriptor
	require.NoError(t, json.Unmarshal([]byte(vanillaDescriptor), &d))
	require.NoError(t, d.Validate())

	assert.Equal(t, "1.20.1", d.ID)
	assert.Equal(t, 17, d.JavaVersion.MajorVersion)
	assert.Equal(t, int64(23028853), d.Downloads.Client.Size)
	require.NotNil(t, d.Downloads.Server)
	assert.Equal(t, "5", d.AssetIndex.ID)
	require.Len(t, d.Libraries, 2)
	require.NotNil(t, d.Libraries[0].Downloads.Artifact)
	assert.Equal(t, "com/mojang/brigadier/1.1.8/brigadier-1.1.8.jar", d.Libraries[0].Downloads.Artifact.Path)
	assert.Nil(t, d.Libraries[1].Downloads.Artifact)
	assert.Equal(t, "natives-linux", d.Libraries[1].Natives["linux"])
	assert.Equal(t, Vanilla{}, d.Variant)
	assert.False(t, d.IsModded())
}

func TestPackageDescriptor_DecodeModded(t *testing.T) {
	tests := []struct {
		name string
		body string
		want ModdedWith
	}{
		{
			name: "inheritsFrom",
			body: `{"id":"fabric-loader-0.14.21-1.20.1","inheritsFrom":"1.20.1","mainClass":"net.fabricmc.loader.impl.launch.knot.KnotClient"}`,
			want: ModdedWith{ExtraMainClass: "net.fabricmc.loader.impl.launch.knot.KnotClient"},
		},
		{
			name: "legacy tweak class argument",
			body: `{"id":"1.7.10-Forge","mainClass":"net.minecraft.launchwrapper.Launch","minecraftArguments":"--username ${auth_player_name} --tweakClass cpw.mods.fml.common.launcher.FMLTweaker"}`,
			want: ModdedWith{TweakClass: "cpw.mods.fml.common.launcher.FMLTweaker"},
		},
		{
			name: "explicit tweak class with parent",
			body: `{"id":"optifine","inheritsFrom":"1.12.2","tweakClass":"optifine.OptiFineTweaker","mainClass":"net.minecraft.launchwrapper.Launch"}`,
			want: ModdedWith{TweakClass: "optifine.OptiFineTweaker", ExtraMainClass: "net.minecraft.launchwrapper.Launch"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d PackageDescriptor
			require.NoError(t, json.Unmarshal([]byte(tt.body), &d))
			assert.Equal(t, tt.want, d.Variant)
			assert.True(t, d.IsModded())
		})
	}
}

func TestPackageDescriptor_Validate(t *testing.T) {
	valid := func() PackageDescriptor {
		var d PackageDescriptor
		require.NoError(t, json.Unmarshal([]byte(vanillaDescriptor), &d))
		return d
	}

	tests := []struct {
		name   string
		mutate func(d *PackageDescriptor)
	}{
		{"missing id", func(d *PackageDescriptor) { d.ID = "" }},
		{"missing main class", func(d *PackageDescriptor) { d.MainClass = "" }},
		{"missing client url", func(d *PackageDescriptor) { d.Downloads.Client.URL = "" }},
		{"missing asset index id", func(d *PackageDescriptor) { d.AssetIndex.ID = "" }},
		{"missing asset index url", func(d *PackageDescriptor) { d.AssetIndex.URL = "" }},
		{"unnamed library", func(d *PackageDescriptor) { d.Libraries[0].Name = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			tt.mutate(&d)
			assert.ErrorIs(t, d.Validate(), errors.ErrMalformedManifest)
		})
	}

	t.Run("wrong shape is a decode error", func(t *testing.T) {
		var d PackageDescriptor
		assert.Error(t, json.Unmarshal([]byte(`{"id": 12}`), &d))
	})
}

func TestLibraryEntry_Allows(t *testing.T) {
	tests := []struct {
		name  string
		rules []Rule
		os    string
		want  bool
	}{
		{"no rules", nil, "linux", true},
		{"allow all but osx on linux", []Rule{{Action: RuleAllow}, {Action: RuleDisallow, OS: &RuleOS{Name: "osx"}}}, "linux", true},
		{"allow all but osx on osx", []Rule{{Action: RuleAllow}, {Action: RuleDisallow, OS: &RuleOS{Name: "osx"}}}, "osx", false},
		{"only osx on windows", []Rule{{Action: RuleAllow, OS: &RuleOS{Name: "osx"}}}, "windows", false},
		{"only osx on osx", []Rule{{Action: RuleAllow, OS: &RuleOS{Name: "osx"}}}, "osx", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := LibraryEntry{Name: "x", Rules: tt.rules}
			assert.Equal(t, tt.want, l.Allows(tt.os))
		})
	}
}
