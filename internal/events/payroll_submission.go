package events

const PayrollSubmissionsTopic = "payroll.submissions.v1"
