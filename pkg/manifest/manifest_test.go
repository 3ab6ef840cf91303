package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const apacheClass = `class apache {
  package { 'apache2':
    ensure => installed,
  }

  service { 'apache2':
    ensure  => running,
    enable  => true,
    require => Package['apache2'],
  }
}`

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code string
		min  int
	}{
		{name: "empty", code: "", min: 0},
		{name: "prose", code: "The quick brown fox jumps over the lazy dog.", min: 0},
		{name: "apache class", code: apacheClass, min: 4},
		{name: "single resource", code: "file { '/etc/motd':\n  ensure => present,\n}", min: 2},
		{name: "namespaced include", code: "include mysql::server", min: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Score(tt.code)
			require.GreaterOrEqual(t, got, tt.min)
			if tt.min == 0 {
				require.Equal(t, 0, got)
			}
		})
	}
}

func TestIsLikely(t *testing.T) {
	t.Parallel()

	require.True(t, IsLikely(apacheClass))
	require.True(t, IsLikely("see the manifest in site.pp"))
	require.False(t, IsLikely("plain documentation text with no code"))
}

func TestHostLanguagePenalty(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, HostLanguagePenalty(apacheClass))

	py := "import os\ndef install():\n    print('installing')\n"
	require.GreaterOrEqual(t, HostLanguagePenalty(py), 3)
}

func TestClean(t *testing.T) {
	t.Parallel()

	t.Run("collapses blank runs", func(t *testing.T) {
		t.Parallel()
		in := "a\n\n\n\nb"
		require.Equal(t, "a\n\nb", Clean(in))
	})

	t.Run("normalizes indentation", func(t *testing.T) {
		t.Parallel()
		in := "class x {\n    file { '/tmp/x':\n        ensure => present,\n    }\n}"
		want := "class x {\n  file { '/tmp/x':\n    ensure => present,\n  }\n}"
		require.Equal(t, want, Clean(in))
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "", Clean(""))
	})
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code string
		want string
	}{
		{
			name: "leading comment wins",
			code: "# Manage the message of the day\nfile { '/etc/motd':\n  ensure => present,\n}",
			want: "Manage the message of the day",
		},
		{
			name: "class name",
			code: "class nginx {\n}",
			want: "Write a Puppet class named nginx",
		},
		{
			name: "defined type",
			code: "define webapp::vhost($docroot) {\n}",
			want: "Write a Puppet defined type named webapp::vhost",
		},
		{
			name: "node definition",
			code: "node 'web01.example.com' {\n}",
			want: "Write a Puppet node definition",
		},
		{
			name: "generic",
			code: "$port = 8080",
			want: "Write Puppet code for system configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Describe(tt.code))
		})
	}
}

func TestWeakDescription(t *testing.T) {
	t.Parallel()

	require.True(t, WeakDescription(""))
	require.True(t, WeakDescription("Classes"))
	require.True(t, WeakDescription("short"))
	require.False(t, WeakDescription("Puppet class for Apache web server"))
}
