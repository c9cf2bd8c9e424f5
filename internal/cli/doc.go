// Package cli implements the issho command-line interface.
//
// Every command except config, version and completion opens one session
// for the selected profile (-p, default "dev"), does its work and closes
// the session:
//
//	issho exec ls -la            - Run a command (streamed)
//	issho exec --bg ./train.sh   - Launch detached under nohup
//	issho get hdfs:/data/part-0  - Download, staging out of HDFS
//	issho put lookup.csv --hdfs  - Upload, staging into HDFS
//	issho hive query.sql         - Run a query with beeline
//	issho spark app.jar          - spark-submit
//	issho hadoop ls /data        - HDFS filesystem commands
//	issho forward 8888           - Local port forward
//	issho config dev             - Create or update a profile
//	issho doctor                 - Check a profile end to end
//
// A remote command that exits non-zero makes issho exit with the same code.
package cli
