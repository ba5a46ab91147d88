// Package config loads nodemend configuration with viper.
//
// Precedence, lowest first: built-in defaults, the YAML file
// (/etc/nodemend/config.yaml or --config), then NODEMEND_* environment
// variables where dots become underscores (readiness.max_attempts is
// NODEMEND_READINESS_MAX_ATTEMPTS).
//
//	snapshot:
//	  uri: /var/lib/gluuengine/db/shared.json   # or bolt:///path/shared.db
//	  strict: true
//	runtime:
//	  backend: cli                              # cli | api | containerd
//	  docker_host: tcp://:3376
//	  tls:
//	    verify: true
//	    ca_cert: /opt/gluu/docker/certs/ca.pem
//	    cert: /opt/gluu/docker/certs/cert.pem
//	    key: /opt/gluu/docker/certs/key.pem
//	readiness:
//	  components: [weave, weaveproxy, weaveplugin]
//	  max_attempts: 6
//	  delay: 10s
//	  settle: 10s
//	metrics:
//	  textfile: /var/lib/node_exporter/textfile/nodemend.prom
package config
