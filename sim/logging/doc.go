// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

/*
ossim writes two kinds of output:

 1. Internal logs: logrus entries on stderr, formatted by InternalFormatter. Engine and actor
    activity (what the classic simulations printed to the console) is logged at debug level,
    run lifecycle at info level.
 2. Reports: the metrics summary of each run on stdout, and the JSON run report in the logs.
*/
package logging
