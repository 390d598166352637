package handlers

// portEntry pairs a TCP port with the service tag the supervisor uses to
// pick a banner/dispatch a dedicated handler for it.
type portEntry struct {
    Port    int
    Service string
}

// tcpPorts is the fleet of ports the honeypot binds to impersonate a
// typical exposed host: well-known service ports plus the high-numbered
// ports real attackers scan for (alt HTTP/HTTPS, common databases,
// message brokers, RDP/VNC, container and orchestration APIs, and so
// on). Ports without a dedicated handler below fall through to the
// generic banner-and-capture handler in internal/handlers/tcphandler.
var tcpPorts = []portEntry{
    {21, "ftp"},
    {22, "ssh"},
    {23, "telnet"},
    {25, "smtp"},
    {53, "dns"},
    {69, "tftp"},
    {79, "finger"},
    {80, "http"},
    {109, "pop2"},
    {110, "pop3"},
    {111, "rpcbind"},
    {113, "ident"},
    {119, "nntp"},
    {135, "msrpc"},
    {139, "netbios-ssn"},
    {143, "imap"},
    {161, "snmp"},
    {179, "bgp"},
    {194, "irc"},
    {389, "ldap"},
    {443, "https"},
    {445, "smb"},
    {464, "kpasswd"},
    {465, "smtps"},
    {512, "exec"},
    {513, "login"},
    {514, "shell"},
    {515, "printer"},
    {543, "klogin"},
    {544, "kshell"},
    {548, "afp"},
    {554, "rtsp"},
    {587, "submission"},
    {593, "http-rpc-epmap"},
    {631, "ipp"},
    {636, "ldaps"},
    {873, "rsync"},
    {989, "ftps-data"},
    {990, "ftps"},
    {993, "imaps"},
    {995, "pop3s"},
    {1025, "msrpc-alt"},
    {1080, "socks"},
    {1099, "rmiregistry"},
    {1194, "openvpn"},
    {1234, "vlc-http"},
    {1311, "dell-openmanage"},
    {1337, "telnet-alt"},
    {1433, "mssql"},
    {1434, "mssql-monitor"},
    {1521, "oracle"},
    {1526, "oracle-alt"},
    {1723, "pptp"},
    {1883, "mqtt"},
    {1900, "ssdp"},
    {1935, "rtmp"},
    {2000, "cisco-sccp"},
    {2049, "nfs"},
    {2082, "cpanel"},
    {2083, "cpanel-ssl"},
    {2086, "whm"},
    {2087, "whm-ssl"},
    {2100, "oracle-xdb"},
    {2181, "zookeeper"},
    {2222, "ssh-alt"},
    {2375, "docker"},
    {2376, "docker-tls"},
    {2379, "etcd-client"},
    {2380, "etcd-peer"},
    {2483, "oracle-db"},
    {2484, "oracle-db-ssl"},
    {2601, "zebra"},
    {2628, "dict"},
    {3000, "http-alt"},
    {3128, "squid"},
    {3260, "iscsi"},
    {3268, "globalcatldap"},
    {3269, "globalcatldaps"},
    {3283, "netassistant"},
    {3299, "sapdb"},
    {3306, "mysql"},
    {3307, "mysql-alt"},
    {3333, "dec-notes"},
    {3389, "rdp"},
    {3690, "svn"},
    {3780, "nexus"},
    {4000, "icq"},
    {4040, "spark-ui"},
    {4369, "epmd"},
    {4443, "pharos"},
    {4444, "krb524"},
    {4567, "tram"},
    {4786, "smart-install"},
    {4848, "glassfish"},
    {5000, "upnp"},
    {5001, "commplex-link"},
    {5005, "aol"},
    {5060, "sip"},
    {5061, "sips"},
    {5222, "xmpp-client"},
    {5269, "xmpp-server"},
    {5351, "natpmp"},
    {5353, "mdns"},
    {5355, "llmnr"},
    {5432, "postgres"},
    {5555, "freeciv"},
    {5601, "kibana"},
    {5631, "pcanywheredata"},
    {5672, "amqp"},
    {5683, "coap"},
    {5900, "vnc"},
    {5901, "vnc-1"},
    {5902, "vnc-2"},
    {5984, "couchdb"},
    {5985, "wsman"},
    {5986, "wsmans"},
    {6000, "x11"},
    {6379, "redis"},
    {6443, "kubernetes-api"},
    {6660, "irc-alt"},
    {6665, "ircu"},
    {6666, "irc-alt2"},
    {6667, "irc-alt3"},
    {6668, "irc-alt4"},
    {6669, "irc-alt5"},
    {6881, "bittorrent"},
    {7000, "afs3-fileserver"},
    {7001, "afs3-callback"},
    {7070, "realserver"},
    {7077, "spark-master"},
    {7199, "cassandra-jmx"},
    {7443, "oracle-em"},
    {7474, "neo4j"},
    {7547, "cwmp"},
    {7777, "cbt"},
    {8000, "http-alt2"},
    {8005, "tomcat-shutdown"},
    {8008, "http-alt3"},
    {8009, "ajp13"},
    {8020, "hadoop-namenode"},
    {8060, "gadugadu"},
    {8069, "odoo"},
    {8080, "http-proxy"},
    {8081, "http-alt4"},
    {8086, "influxdb"},
    {8087, "riak"},
    {8088, "radan-http"},
    {8090, "http-alt5"},
    {8091, "couchbase"},
    {8161, "activemq-console"},
    {8180, "tomcat-alt"},
    {8222, "vmware-server"},
    {8243, "https-alt"},
    {8291, "winbox"},
    {8333, "bitcoin"},
    {8400, "cvd"},
    {8443, "https-alt2"},
    {8500, "consul"},
    {8530, "http-alt6"},
    {8531, "https-alt3"},
    {8649, "ganglia"},
    {8686, "jmx"},
    {8765, "ultraseek-http"},
    {8834, "nessus"},
    {8880, "cddbp-alt"},
    {8888, "http-alt7"},
    {8983, "solr"},
    {9000, "cslistener"},
    {9001, "tor-orport"},
    {9042, "cassandra"},
    {9043, "websphere-admin"},
    {9050, "tor-socks"},
    {9080, "glrpc"},
    {9090, "zeus-admin"},
    {9092, "kafka"},
    {9100, "jetdirect"},
    {9200, "elasticsearch"},
    {9300, "elasticsearch-transport"},
    {9389, "adws"},
    {9418, "git"},
    {9999, "abyss"},
    {10000, "webmin"},
    {10050, "zabbix-agent"},
    {10051, "zabbix-trapper"},
    {10250, "kubelet"},
    {10255, "kubelet-readonly"},
    {11211, "memcached"},
    {11300, "beanstalkd"},
    {15672, "rabbitmq-mgmt"},
    {16379, "redis-cluster-bus"},
    {20000, "usermin"},
    {24800, "synergy"},
    {25565, "minecraft"},
    {27015, "srcds"},
    {27017, "mongodb"},
    {27018, "mongodb-shard"},
    {27019, "mongodb-config"},
    {28015, "rethinkdb"},
    {28017, "mongodb-http"},
    {32400, "plex"},
    {37777, "dvr"},
    {44818, "ethernet-ip"},
    {47808, "bacnet"},
    {50000, "sap-dp"},
    {50070, "hadoop-namenode-http"},
    {54321, "oracle-em-alt"},
    {55553, "metasploit"},
}
