package collect

import "github.com/manifestlab/puppetmill/pkg/corpus"

// Curated returns the canonical hand-written examples that ship with the
// tool. They anchor the dataset with known-good coverage of the core
// resource types, classes, defined types, and node definitions even when a
// collection run finds little online.
func Curated() []corpus.Example {
	examples := make([]corpus.Example, 0, len(curatedExamples))
	for _, ex := range curatedExamples {
		examples = append(examples, corpus.Example{
			Code:        ex.code,
			Description: ex.description,
			Source:      "curated",
			Score:       10,
			Kind:        corpus.KindCurated,
		})
	}
	return examples
}

var curatedExamples = []struct {
	description string
	code        string
}{
	{
		description: "Create a basic file resource",
		code: `file { '/etc/motd':
  ensure  => present,
  content => 'Welcome to this server',
  owner   => 'root',
  group   => 'root',
  mode    => '0644',
}`,
	},
	{
		description: "Create a directory with specific permissions",
		code: `file { '/opt/myapp':
  ensure => directory,
  owner  => 'myapp',
  group  => 'myapp',
  mode   => '0755',
}`,
	},
	{
		description: "Install a package",
		code: `package { 'nginx':
  ensure => installed,
}`,
	},
	{
		description: "Manage a service",
		code: `service { 'nginx':
  ensure => running,
  enable => true,
}`,
	},
	{
		description: "Stop and disable a service",
		code: `service { 'apache2':
  ensure => stopped,
  enable => false,
}`,
	},
	{
		description: "Create a user account",
		code: `user { 'webapp':
  ensure => present,
  uid    => 1001,
  shell  => '/bin/bash',
  home   => '/home/webapp',
}`,
	},
	{
		description: "Create a group",
		code: `group { 'webadmin':
  ensure => present,
  gid    => 1002,
}`,
	},
	{
		description: "Execute a command",
		code: `exec { 'update-packages':
  command => '/usr/bin/apt-get update',
  unless  => '/usr/bin/test -f /var/cache/apt/pkgcache.bin',
}`,
	},
	{
		description: "Complete Apache web server class with package, service, and file management",
		code: `class apache {
  package { 'apache2':
    ensure => installed,
  }

  service { 'apache2':
    ensure  => running,
    enable  => true,
    require => Package['apache2'],
  }

  file { '/var/www/html/index.html':
    ensure  => file,
    content => '<h1>Hello from Puppet!</h1>',
    require => Package['apache2'],
  }

  file { '/etc/apache2/sites-available/default':
    ensure  => file,
    source  => 'puppet:///modules/apache/default-site',
    notify  => Service['apache2'],
    require => Package['apache2'],
  }
}`,
	},
	{
		description: "Class with parameters",
		code: `class mysql (
  String $root_password,
  String $version = '8.0'
) {
  package { 'mysql-server':
    ensure => $version,
  }

  service { 'mysql':
    ensure  => running,
    enable  => true,
    require => Package['mysql-server'],
  }
}`,
	},
	{
		description: "Parameterized MySQL server class with configuration and security setup",
		code: `class mysql::server (
  $root_password = 'changeme',
  $bind_address = '127.0.0.1',
  $port = 3306,
  $datadir = '/var/lib/mysql',
) {
  package { 'mysql-server':
    ensure => installed,
  }

  service { 'mysql':
    ensure  => running,
    enable  => true,
    require => Package['mysql-server'],
  }

  file { '/etc/mysql/mysql.conf.d/puppet.cnf':
    ensure  => file,
    content => template('mysql/puppet.cnf.erb'),
    notify  => Service['mysql'],
    require => Package['mysql-server'],
  }

  exec { 'set-mysql-password':
    unless  => "mysqladmin -uroot -p${root_password} status",
    command => "mysqladmin -uroot password ${root_password}",
    path    => ['/usr/bin', '/usr/sbin'],
    require => Service['mysql'],
  }
}`,
	},
	{
		description: "Nginx web server class with parameterized configuration",
		code: `class nginx (
  $worker_processes = 'auto',
  $worker_connections = 1024,
  $sendfile = true,
  $tcp_nopush = true,
) {
  package { 'nginx':
    ensure => installed,
  }

  service { 'nginx':
    ensure  => running,
    enable  => true,
    require => Package['nginx'],
  }

  file { '/etc/nginx/nginx.conf':
    ensure  => file,
    content => template('nginx/nginx.conf.erb'),
    notify  => Service['nginx'],
    require => Package['nginx'],
  }

  file { '/etc/nginx/sites-enabled/default':
    ensure => absent,
    notify => Service['nginx'],
  }
}`,
	},
	{
		description: "Nginx virtual host defined type with enable/disable functionality",
		code: `define nginx::site (
  $ensure = 'enabled',
  $server_name = $title,
  $root = "/var/www/${title}",
) {
  include nginx

  file { "/etc/nginx/sites-available/${title}":
    ensure  => file,
    content => template('nginx/site.erb'),
    require => Class['nginx'],
  }

  case $ensure {
    'enabled': {
      file { "/etc/nginx/sites-enabled/${title}":
        ensure  => link,
        target  => "/etc/nginx/sites-available/${title}",
        require => File["/etc/nginx/sites-available/${title}"],
        notify  => Service['nginx'],
      }
    }
    'disabled': {
      file { "/etc/nginx/sites-enabled/${title}":
        ensure => absent,
        notify => Service['nginx'],
      }
    }
  }
}`,
	},
	{
		description: "Comprehensive defined type for creating users with home directories and configuration",
		code: `define create_user($username, $uid, $shell = '/bin/bash', $groups = []) {
  user { $username:
    ensure  => present,
    uid     => $uid,
    shell   => $shell,
    home    => "/home/${username}",
    groups  => $groups,
    gid     => $username,
  }

  group { $username:
    ensure => present,
    gid    => $uid,
  }

  file { "/home/${username}":
    ensure  => directory,
    owner   => $username,
    group   => $username,
    mode    => '0755',
    require => User[$username],
  }
}`,
	},
	{
		description: "Complete node definition for a LAMP stack web server",
		code: `node 'webserver.example.com' {
  include apache
  include mysql::server
  include php

  package { ['php-mysql', 'php-gd', 'php-curl']:
    ensure  => installed,
    require => Class['php'],
  }

  file { '/etc/apache2/sites-available/webapp.conf':
    ensure  => file,
    content => template('webapp/apache-vhost.erb'),
    notify  => Service['apache2'],
    require => Class['apache'],
  }

  mysql::db { 'webapp_db':
    user     => 'webapp_user',
    password => 'secure_password',
    host     => 'localhost',
    grant    => ['SELECT', 'INSERT', 'UPDATE', 'DELETE'],
  }
}`,
	},
	{
		description: "Basic firewall class with iptables rules for security",
		code: `class firewall {
  package { 'iptables':
    ensure => installed,
  }

  exec { 'iptables-default-policy-input':
    command => 'iptables -P INPUT DROP',
    unless  => 'iptables -L INPUT | grep "policy DROP"',
    path    => ['/sbin', '/usr/sbin'],
    require => Package['iptables'],
  }

  exec { 'iptables-allow-loopback':
    command => 'iptables -A INPUT -i lo -j ACCEPT',
    unless  => 'iptables -L INPUT | grep "lo.*ACCEPT"',
    path    => ['/sbin', '/usr/sbin'],
    require => Exec['iptables-default-policy-input'],
  }

  exec { 'iptables-allow-established':
    command => 'iptables -A INPUT -m state --state ESTABLISHED,RELATED -j ACCEPT',
    unless  => 'iptables -L INPUT | grep "state RELATED,ESTABLISHED"',
    path    => ['/sbin', '/usr/sbin'],
    require => Exec['iptables-default-policy-input'],
  }
}`,
	},
	{
		description: "Define a custom resource type for deploying web applications",
		code: `define webapp::vhost (
  String $docroot,
  Integer $port = 80
) {
  file { "/etc/apache2/sites-available/${title}.conf":
    ensure  => file,
    content => template('webapp/vhost.erb'),
    notify  => Service['apache2'],
  }
}`,
	},
	{
		description: "Define a node",
		code: `node 'webserver01.example.com' {
  include webserver
  include mysql
}`,
	},
}
